package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/fiberglass/internal/chat"
	"github.com/matheus3301/fiberglass/internal/contact"
	"github.com/matheus3301/fiberglass/internal/daemon"
	"github.com/matheus3301/fiberglass/internal/gallery"
	intsync "github.com/matheus3301/fiberglass/internal/sync"
)

// cmdWatch mounts one view and prints it every time it re-reads with a
// changed result, until interrupted.
func (c *cli) cmdWatch(args []string) {
	if len(args) == 0 {
		usage("watch <chats|thread <id>|inbox|gallery>")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	views := intsync.NewViews(c.site, intsync.Ticker{}, daemon.Intervals(c.cfg.Sync), c.logger)
	var last string
	changed := func(v any) bool {
		s := fmt.Sprint(v)
		if s == last {
			return false
		}
		last = s
		return true
	}

	var view *intsync.View
	switch args[0] {
	case "chats":
		view = views.ThreadList(func(threads []chat.Thread) {
			if changed(threads) {
				c.render(threads, func() { printThreads(threads) })
			}
		})
	case "thread":
		if len(args) < 2 {
			usage("watch thread <id>")
		}
		if c.site.Chats.Thread(args[1]) == nil {
			notFound("chat", args[1])
		}
		view = views.Thread(args[1], func(msgs []chat.Message) {
			if changed(msgs) {
				c.render(msgs, func() { printMessages(msgs) })
			}
		})
	case "inbox":
		view = views.Inbox(func(msgs []contact.Message) {
			if changed(msgs) {
				c.render(msgs, func() { printInbox(msgs) })
			}
		})
	case "gallery":
		view = views.Gallery(func(items []gallery.Item) {
			if changed(items) {
				c.render(items, func() { printGallery(items) })
			}
		})
	default:
		usage("watch <chats|thread <id>|inbox|gallery>")
	}

	engine := intsync.NewEngine(c.site.Store, c.site.Namespace, c.site.Bus, c.logger)
	engine.Start(ctx)
	defer engine.Stop()

	if err := view.Mount(ctx); err != nil {
		fatal(err)
	}
	defer view.Unmount()

	<-ctx.Done()
}

func (c *cli) render(v any, text func()) {
	if c.jsonOut {
		outputJSON(v)
		return
	}
	fmt.Printf("--- %s\n", time.Now().Format("15:04:05"))
	text()
}

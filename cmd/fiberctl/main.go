package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/config"
	"github.com/matheus3301/fiberglass/internal/daemon"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/lock"
	"github.com/matheus3301/fiberglass/internal/logging"
	"github.com/matheus3301/fiberglass/internal/origin"
	"github.com/matheus3301/fiberglass/internal/site"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli is the state shared by every command.
type cli struct {
	site    *site.Site
	cfg     *config.Config
	dir     string
	logger  *zap.Logger
	jsonOut bool
}

func main() {
	originFlag := flag.String("origin", "", "origin name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	verbose := flag.Bool("v", false, "log store activity to stderr")
	flag.Parse()

	originName := origin.Resolve(*originFlag)
	if err := origin.ValidateName(originName); err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(origin.ConfigPath())
	if err != nil {
		fatal(err)
	}
	level := zapcore.WarnLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	logger := logging.NewConsole(level).With(zap.String("origin", originName))

	if err := origin.EnsureDir(originName); err != nil {
		fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	backend, err := daemon.OpenStore(ctx, originName, origin.Dir(originName), cfg.Store, cfg.Sync.ChangePollInterval, logger)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open store for origin %q: %v\n", originName, err)
		os.Exit(1)
	}
	defer func() { _ = backend.Close() }()

	c := &cli{
		site:    site.New(backend.Store, keys.Namespace(cfg.Store.Namespace), bus.New(), logger),
		cfg:     cfg,
		dir:     origin.Dir(originName),
		logger:  logger,
		jsonOut: *jsonFlag,
	}

	rest := args[1:]
	switch args[0] {
	case "status":
		c.cmdStatus()
	case "chats":
		c.cmdChats(rest)
	case "contact":
		c.cmdContact(rest)
	case "messages":
		c.cmdMessages(rest)
	case "gallery":
		c.cmdGallery(rest)
	case "team":
		c.cmdTeam(rest)
	case "settings":
		c.cmdSettings(rest)
	case "watch":
		c.cmdWatch(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: fiberctl [--origin <name>] [--json] [-v] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                                   Show admin badges")
	fmt.Fprintln(os.Stderr, "  chats list                               List conversations")
	fmt.Fprintln(os.Stderr, "  chats show <id>                          Show a conversation")
	fmt.Fprintln(os.Stderr, "  chats create <name> <phone>              Open a conversation")
	fmt.Fprintln(os.Stderr, "  chats send <id> <customer|admin> <text>  Send a message")
	fmt.Fprintln(os.Stderr, "  chats read <id>                          Mark a conversation read")
	fmt.Fprintln(os.Stderr, "  chats delete <id>                        Delete a conversation")
	fmt.Fprintln(os.Stderr, "  contact show                             Show contact details")
	fmt.Fprintln(os.Stderr, "  contact set <field> <value>              Change a contact detail")
	fmt.Fprintln(os.Stderr, "  messages list                            List contact form messages")
	fmt.Fprintln(os.Stderr, "  messages add <name> <phone> <subject> <text>")
	fmt.Fprintln(os.Stderr, "  messages read <id>                       Mark a message read")
	fmt.Fprintln(os.Stderr, "  messages delete <id>                     Delete a message")
	fmt.Fprintln(os.Stderr, "  gallery list                             List gallery items")
	fmt.Fprintln(os.Stderr, "  gallery add <image|video> <url> <title> [description]")
	fmt.Fprintln(os.Stderr, "  gallery rename <id> <title>              Change an item's title")
	fmt.Fprintln(os.Stderr, "  gallery delete <id>                      Delete an item")
	fmt.Fprintln(os.Stderr, "  team list                                List team members")
	fmt.Fprintln(os.Stderr, "  team show <id>                           Show a member")
	fmt.Fprintln(os.Stderr, "  team add <name> <role> [color]           Add a member")
	fmt.Fprintln(os.Stderr, "  team delete <id>                         Remove a member")
	fmt.Fprintln(os.Stderr, "  team reset                               Restore the default roster")
	fmt.Fprintln(os.Stderr, "  settings show                            Show site settings")
	fmt.Fprintln(os.Stderr, "  settings lock|unlock                     Lock or unlock the site")
	fmt.Fprintln(os.Stderr, "  settings message <text>                  Set the lock message")
	fmt.Fprintln(os.Stderr, "  watch chats|thread <id>|inbox|gallery    Follow live changes")
}

func (c *cli) cmdStatus() {
	b := c.site.Badges()
	holder, err := lock.Current(c.dir, "fiberd")
	if err != nil {
		c.logger.Warn("cannot read daemon lock", zap.Error(err))
	}
	if c.jsonOut {
		outputJSON(map[string]any{"badges": b, "backend": c.cfg.Store.Backend, "daemon": holder})
		return
	}
	fmt.Printf("Unread chats:    %d\n", b.UnreadChats)
	fmt.Printf("Unread messages: %d\n", b.UnreadMessages)
	fmt.Printf("Site locked:     %t\n", b.Locked)
	fmt.Printf("Backend:         %s\n", c.cfg.Store.Backend)
	if holder != nil {
		fmt.Printf("Daemon:          running (pid %d since %s)\n", holder.PID, formatTime(holder.Since))
	} else {
		fmt.Println("Daemon:          not running")
	}
}

func usage(line string) {
	fmt.Fprintln(os.Stderr, "usage: fiberctl "+line)
	os.Exit(1)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func notFound(what, id string) {
	fmt.Fprintf(os.Stderr, "error: %s %q not found\n", what, id)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

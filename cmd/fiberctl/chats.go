package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matheus3301/fiberglass/internal/chat"
)

func (c *cli) cmdChats(args []string) {
	if len(args) == 0 {
		usage("chats <list|show|create|send|read|delete>")
	}
	repo := c.site.Chats
	switch args[0] {
	case "list":
		threads := repo.Threads()
		if c.jsonOut {
			outputJSON(threads)
			return
		}
		printThreads(threads)
	case "show":
		if len(args) < 2 {
			usage("chats show <id>")
		}
		t := repo.Thread(args[1])
		if t == nil {
			notFound("chat", args[1])
		}
		msgs := repo.Messages(t.ID)
		if c.jsonOut {
			outputJSON(map[string]any{"chat": t, "messages": msgs})
			return
		}
		fmt.Printf("%s (%s), %d unread\n\n", t.CustomerName, t.CustomerPhone, t.UnreadCount)
		printMessages(msgs)
	case "create":
		if len(args) < 3 {
			usage("chats create <name> <phone>")
		}
		t := repo.CreateThread(args[1], args[2])
		if c.jsonOut {
			outputJSON(t)
			return
		}
		fmt.Println(t.ID)
	case "send":
		if len(args) < 4 {
			usage("chats send <id> <customer|admin> <text>")
		}
		m, ok := repo.Send(args[1], strings.Join(args[3:], " "), chat.Sender(args[2]))
		if !ok {
			fmt.Fprintf(os.Stderr, "error: message not sent (unknown chat %q or sender %q)\n", args[1], args[2])
			os.Exit(1)
		}
		if c.jsonOut {
			outputJSON(m)
			return
		}
		fmt.Println(m.ID)
	case "read":
		if len(args) < 2 {
			usage("chats read <id>")
		}
		if repo.Thread(args[1]) == nil {
			notFound("chat", args[1])
		}
		repo.MarkRead(args[1])
	case "delete":
		if len(args) < 2 {
			usage("chats delete <id>")
		}
		if !repo.Delete(args[1]) {
			notFound("chat", args[1])
		}
	default:
		usage("chats <list|show|create|send|read|delete>")
	}
}

func printThreads(threads []chat.Thread) {
	if len(threads) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, t := range threads {
		unread := ""
		if t.UnreadCount > 0 {
			unread = fmt.Sprintf(" [%d]", t.UnreadCount)
		}
		fmt.Printf("%-22s %-20s %-14s %s%s  %s\n",
			t.ID, t.CustomerName, t.CustomerPhone, formatTime(t.LastMessageTime), unread, t.LastMessage)
	}
}

func printMessages(msgs []chat.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		mark := " "
		if m.Sender == chat.Customer && !m.IsRead {
			mark = "*"
		}
		fmt.Printf("%s %s %-8s %s\n", mark, formatTime(m.CreatedAt), m.Sender, m.Message)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matheus3301/fiberglass/internal/contact"
	"github.com/matheus3301/fiberglass/internal/gallery"
	"github.com/matheus3301/fiberglass/internal/team"
)

func (c *cli) cmdContact(args []string) {
	if len(args) == 0 {
		usage("contact <show|set>")
	}
	repo := c.site.Contact
	switch args[0] {
	case "show":
		info := repo.Info()
		if c.jsonOut {
			outputJSON(info)
			return
		}
		fmt.Printf("Phone:   %s, %s\n", info.Phone1, info.Phone2)
		fmt.Printf("Email:   %s, %s\n", info.Email1, info.Email2)
		fmt.Printf("Address: %s, %s\n", info.Address, info.AddressDetail)
	case "set":
		if len(args) < 3 {
			usage("contact set <phone1|phone2|email1|email2|address|addressDetail> <value>")
		}
		info := repo.Info()
		value := strings.Join(args[2:], " ")
		switch args[1] {
		case "phone1":
			info.Phone1 = value
		case "phone2":
			info.Phone2 = value
		case "email1":
			info.Email1 = value
		case "email2":
			info.Email2 = value
		case "address":
			info.Address = value
		case "addressDetail":
			info.AddressDetail = value
		default:
			usage("contact set <phone1|phone2|email1|email2|address|addressDetail> <value>")
		}
		repo.SaveInfo(info)
	default:
		usage("contact <show|set>")
	}
}

func (c *cli) cmdMessages(args []string) {
	if len(args) == 0 {
		usage("messages <list|add|read|delete>")
	}
	repo := c.site.Contact
	switch args[0] {
	case "list":
		msgs := repo.Messages()
		if c.jsonOut {
			outputJSON(msgs)
			return
		}
		printInbox(msgs)
	case "add":
		if len(args) < 5 {
			usage("messages add <name> <phone> <subject> <text>")
		}
		m := repo.AddMessage(contact.NewMessage{
			Name:    args[1],
			Phone:   args[2],
			Subject: args[3],
			Message: strings.Join(args[4:], " "),
		})
		fmt.Println(m.ID)
	case "read":
		if len(args) < 2 {
			usage("messages read <id>")
		}
		if !repo.MarkMessageRead(args[1]) {
			notFound("message", args[1])
		}
	case "delete":
		if len(args) < 2 {
			usage("messages delete <id>")
		}
		if !repo.DeleteMessage(args[1]) {
			notFound("message", args[1])
		}
	default:
		usage("messages <list|add|read|delete>")
	}
}

func printInbox(msgs []contact.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		mark := " "
		if !m.IsRead {
			mark = "*"
		}
		fmt.Printf("%s %-22s %s %-16s %-14s %s\n", mark, m.ID, formatTime(m.CreatedAt), m.Name, m.Phone, m.Subject)
	}
}

func (c *cli) cmdGallery(args []string) {
	if len(args) == 0 {
		usage("gallery <list|add|rename|delete>")
	}
	repo := c.site.Gallery
	switch args[0] {
	case "list":
		items := repo.Items()
		if c.jsonOut {
			outputJSON(items)
			return
		}
		printGallery(items)
	case "add":
		if len(args) < 4 {
			usage("gallery add <image|video> <url> <title> [description]")
		}
		typ := gallery.MediaType(args[1])
		if !typ.Valid() {
			usage("gallery add <image|video> <url> <title> [description]")
		}
		it := repo.Add(gallery.NewItem{
			Type:        typ,
			URL:         args[2],
			Title:       args[3],
			Description: strings.Join(args[4:], " "),
		})
		fmt.Println(it.ID)
	case "rename":
		if len(args) < 3 {
			usage("gallery rename <id> <title>")
		}
		title := strings.Join(args[2:], " ")
		if repo.Update(args[1], gallery.Patch{Title: &title}) == nil {
			notFound("gallery item", args[1])
		}
	case "delete":
		if len(args) < 2 {
			usage("gallery delete <id>")
		}
		if !repo.Delete(args[1]) {
			notFound("gallery item", args[1])
		}
	default:
		usage("gallery <list|add|rename|delete>")
	}
}

func printGallery(items []gallery.Item) {
	if len(items) == 0 {
		fmt.Println("Gallery is empty.")
		return
	}
	for _, it := range items {
		url := it.URL
		if len(url) > 48 {
			url = url[:45] + "..."
		}
		fmt.Printf("%-22s %-5s %-24s %s\n", it.ID, it.Type, it.Title, url)
	}
}

func (c *cli) cmdTeam(args []string) {
	if len(args) == 0 {
		usage("team <list|show|add|delete|reset>")
	}
	repo := c.site.Team
	switch args[0] {
	case "list":
		members := repo.Members()
		if c.jsonOut {
			outputJSON(members)
			return
		}
		for _, m := range members {
			fmt.Printf("%-22s %-8s %-20s %s\n", m.ID, m.Color, m.Name, m.Role)
		}
	case "show":
		if len(args) < 2 {
			usage("team show <id>")
		}
		m := repo.Member(args[1])
		if m == nil {
			notFound("team member", args[1])
		}
		if c.jsonOut {
			outputJSON(m)
			return
		}
		fmt.Printf("%s, %s (%s)\n", m.Name, m.Role, m.Color)
		if m.Experience != "" {
			fmt.Printf("Experience: %s\n", m.Experience)
		}
		if m.Bio != "" {
			fmt.Printf("\n%s\n", m.Bio)
		}
		if len(m.Skills) > 0 {
			fmt.Printf("\nSkills: %s\n", strings.Join(m.Skills, ", "))
		}
		for _, a := range m.Achievements {
			fmt.Printf("  - %s\n", a)
		}
	case "add":
		if len(args) < 3 {
			usage("team add <name> <role> [color]")
		}
		in := team.NewMember{Name: args[1], Role: args[2]}
		if len(args) > 3 {
			in.Color = team.Color(args[3])
			if !in.Color.Valid() {
				fmt.Fprintf(os.Stderr, "error: unknown color %q; one of %v\n", args[3], team.Colors)
				os.Exit(1)
			}
		}
		m := repo.Add(in)
		fmt.Println(m.ID)
	case "delete":
		if len(args) < 2 {
			usage("team delete <id>")
		}
		if !repo.Delete(args[1]) {
			notFound("team member", args[1])
		}
	case "reset":
		members := repo.Reset()
		fmt.Printf("Roster reset to %d members.\n", len(members))
	default:
		usage("team <list|show|add|delete|reset>")
	}
}

func (c *cli) cmdSettings(args []string) {
	if len(args) == 0 {
		usage("settings <show|lock|unlock|message>")
	}
	repo := c.site.Settings
	switch args[0] {
	case "show":
		s := repo.Get()
		if c.jsonOut {
			outputJSON(s)
			return
		}
		fmt.Printf("Locked:       %t\n", s.IsLocked)
		fmt.Printf("Message:      %s\n", s.LockMessage)
		fmt.Printf("Last updated: %s\n", formatTime(s.LastUpdated))
	case "lock":
		repo.SetLocked(true)
	case "unlock":
		repo.SetLocked(false)
	case "message":
		if len(args) < 2 {
			usage("settings message <text>")
		}
		repo.SetLockMessage(strings.Join(args[1:], " "))
	default:
		usage("settings <show|lock|unlock|message>")
	}
}

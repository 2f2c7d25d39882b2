package sync

import (
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/chat"
	"github.com/matheus3301/fiberglass/internal/contact"
	"github.com/matheus3301/fiberglass/internal/gallery"
	"github.com/matheus3301/fiberglass/internal/settings"
	"github.com/matheus3301/fiberglass/internal/site"
	"github.com/matheus3301/fiberglass/internal/team"
	"go.uber.org/zap"
)

// Intervals are the polling fallbacks for views that poll.
type Intervals struct {
	ThreadList     time.Duration
	ThreadMessages time.Duration
	Gallery        time.Duration
	Inbox          time.Duration
}

// DefaultIntervals match the admin panel's refresh rates.
func DefaultIntervals() Intervals {
	return Intervals{
		ThreadList:     time.Second,
		ThreadMessages: 500 * time.Millisecond,
		Gallery:        500 * time.Millisecond,
		Inbox:          time.Second,
	}
}

// Views builds views over one site.
type Views struct {
	site      *site.Site
	sched     Scheduler
	intervals Intervals
	logger    *zap.Logger
}

func NewViews(s *site.Site, sched Scheduler, intervals Intervals, logger *zap.Logger) *Views {
	return &Views{site: s, sched: sched, intervals: intervals, logger: logger}
}

func (vs *Views) view(cfg ViewConfig) *View {
	return NewView(cfg, vs.site.Bus, vs.sched, vs.logger)
}

// ThreadList renders the thread list. It also re-reads on message signals
// since a send changes the owning thread's summary.
func (vs *Views) ThreadList(render func([]chat.Thread)) *View {
	return vs.view(ViewConfig{
		Name:      "thread_list",
		Namespace: "chat.",
		Interval:  vs.intervals.ThreadList,
		Reload:    func() { render(vs.site.Chats.Threads()) },
	})
}

// Thread renders one open conversation.
func (vs *Views) Thread(threadID string, render func([]chat.Message)) *View {
	key := vs.site.Namespace.ThreadMessages(threadID)
	return vs.view(ViewConfig{
		Name:      "thread",
		Namespace: "chat.messages",
		Match:     func(evt bus.Event) bool { return evt.Key == key },
		Interval:  vs.intervals.ThreadMessages,
		Reload:    func() { render(vs.site.Chats.Messages(threadID)) },
	})
}

// Inbox renders the contact messages list.
func (vs *Views) Inbox(render func([]contact.Message)) *View {
	return vs.view(ViewConfig{
		Name:      "inbox",
		Namespace: "contact.messages",
		Interval:  vs.intervals.Inbox,
		Reload:    func() { render(vs.site.Contact.Messages()) },
	})
}

// ContactInfo renders the contact details. It does not poll.
func (vs *Views) ContactInfo(render func(contact.Info)) *View {
	return vs.view(ViewConfig{
		Name:      "contact_info",
		Namespace: "contact.info",
		Reload:    func() { render(vs.site.Contact.Info()) },
	})
}

func (vs *Views) Gallery(render func([]gallery.Item)) *View {
	return vs.view(ViewConfig{
		Name:      "gallery",
		Namespace: "gallery.",
		Interval:  vs.intervals.Gallery,
		Reload:    func() { render(vs.site.Gallery.Items()) },
	})
}

// Team renders the roster. It does not poll.
func (vs *Views) Team(render func([]team.Member)) *View {
	return vs.view(ViewConfig{
		Name:      "team",
		Namespace: "team.",
		Reload:    func() { render(vs.site.Team.Members()) },
	})
}

// Maintenance renders the lock state. It does not poll.
func (vs *Views) Maintenance(render func(settings.SiteSettings)) *View {
	return vs.view(ViewConfig{
		Name:      "maintenance",
		Namespace: "settings.",
		Reload:    func() { render(vs.site.Settings.Get()) },
	})
}

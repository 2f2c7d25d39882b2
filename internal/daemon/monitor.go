package daemon

import (
	"context"
	"sync"

	"github.com/matheus3301/fiberglass/internal/chat"
	"github.com/matheus3301/fiberglass/internal/contact"
	"github.com/matheus3301/fiberglass/internal/gallery"
	"github.com/matheus3301/fiberglass/internal/settings"
	"github.com/matheus3301/fiberglass/internal/site"
	intsync "github.com/matheus3301/fiberglass/internal/sync"
	"go.uber.org/zap"
)

// Status is what the monitor last observed.
type Status struct {
	Threads        int
	UnreadChats    int
	UnreadMessages int
	GalleryItems   int
	Locked         bool
}

// Monitor mounts the admin panel's views headlessly and logs when their
// counters change.
type Monitor struct {
	views  []*intsync.View
	logger *zap.Logger

	mu     sync.Mutex
	status Status
}

func NewMonitor(s *site.Site, sched intsync.Scheduler, intervals intsync.Intervals, logger *zap.Logger) *Monitor {
	m := &Monitor{logger: logger.Named("monitor")}
	vs := intsync.NewViews(s, sched, intervals, logger)
	m.views = []*intsync.View{
		vs.ThreadList(m.onThreads),
		vs.Inbox(m.onInbox),
		vs.Gallery(m.onGallery),
		vs.Maintenance(m.onSettings),
	}
	return m
}

// Start mounts every view.
func (m *Monitor) Start(ctx context.Context) error {
	for i, v := range m.views {
		if err := v.Mount(ctx); err != nil {
			for _, mounted := range m.views[:i] {
				mounted.Unmount()
			}
			return err
		}
	}
	m.logger.Info("monitor started", zap.Any("status", m.Status()))
	return nil
}

// Stop unmounts every view.
func (m *Monitor) Stop() {
	for _, v := range m.views {
		v.Unmount()
	}
}

// Status returns the last observed counters.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) onThreads(threads []chat.Thread) {
	unread := 0
	for _, t := range threads {
		unread += t.UnreadCount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if unread != m.status.UnreadChats {
		m.logger.Info("unread chats changed", zap.Int("from", m.status.UnreadChats), zap.Int("to", unread))
	}
	if len(threads) > m.status.Threads {
		m.logger.Info("new conversation", zap.String("customer", threads[0].CustomerName))
	}
	m.status.Threads = len(threads)
	m.status.UnreadChats = unread
}

func (m *Monitor) onInbox(msgs []contact.Message) {
	unread := 0
	for _, msg := range msgs {
		if !msg.IsRead {
			unread++
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if unread != m.status.UnreadMessages {
		m.logger.Info("unread contact messages changed", zap.Int("from", m.status.UnreadMessages), zap.Int("to", unread))
	}
	m.status.UnreadMessages = unread
}

func (m *Monitor) onGallery(items []gallery.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(items) != m.status.GalleryItems {
		m.logger.Info("gallery changed", zap.Int("items", len(items)))
	}
	m.status.GalleryItems = len(items)
}

func (m *Monitor) onSettings(s settings.SiteSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IsLocked != m.status.Locked {
		m.logger.Info("site lock changed", zap.Bool("locked", s.IsLocked))
	}
	m.status.Locked = s.IsLocked
}

// Package site bundles every repository over one store handle and bus.
package site

import (
	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/chat"
	"github.com/matheus3301/fiberglass/internal/contact"
	"github.com/matheus3301/fiberglass/internal/gallery"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"github.com/matheus3301/fiberglass/internal/settings"
	"github.com/matheus3301/fiberglass/internal/team"
	"go.uber.org/zap"
)

// Site is one tab's view of an origin's state.
type Site struct {
	Namespace keys.Namespace
	Store     kv.Store
	Bus       *bus.Bus

	Chats    *chat.Repository
	Contact  *contact.Repository
	Gallery  *gallery.Repository
	Team     *team.Repository
	Settings *settings.Repository
}

// New wires the repositories. A nil store is treated as unavailable storage.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Site {
	if store == nil {
		store = kv.Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Site{
		Namespace: ns,
		Store:     store,
		Bus:       b,
		Chats:     chat.New(store, ns, b, logger),
		Contact:   contact.New(store, ns, b, logger),
		Gallery:   gallery.New(store, ns, b, logger),
		Team:      team.New(store, ns, b, logger),
		Settings:  settings.New(store, ns, b, logger),
	}
}

// Badges are the admin panel's counters.
type Badges struct {
	UnreadChats    int
	UnreadMessages int
	Locked         bool
}

// Badges reads the counters from persisted state.
func (s *Site) Badges() Badges {
	return Badges{
		UnreadChats:    s.Chats.TotalUnread(),
		UnreadMessages: s.Contact.UnreadCount(),
		Locked:         s.Settings.Get().IsLocked,
	}
}

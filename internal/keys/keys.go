// Package keys names the storage keys each repository owns and the change
// signal published when one of them is written.
package keys

import "strings"

// DefaultNamespace prefixes every repository key.
const DefaultNamespace = "fiberglass"

// Signal kinds. Views subscribe by prefix, so "chat." covers both chat kinds.
const (
	ThreadsChanged         = "chat.threads_changed"
	ThreadMessagesChanged  = "chat.messages_changed"
	ContactInfoChanged     = "contact.info_changed"
	ContactMessagesChanged = "contact.messages_changed"
	GalleryChanged         = "gallery.items_changed"
	TeamChanged            = "team.roster_changed"
	SettingsChanged        = "settings.changed"
)

// Unnamespaced keys the customer chat view remembers between visits.
const (
	CustomerPhone = "customer_phone"
	CustomerName  = "customer_name"
)

// Namespace builds the keys for one site.
type Namespace string

func (n Namespace) key(name string) string {
	if n == "" {
		return name
	}
	return string(n) + "_" + name
}

func (n Namespace) Contact() string         { return n.key("contact") }
func (n Namespace) ContactMessages() string { return n.key("messages") }
func (n Namespace) Gallery() string         { return n.key("gallery") }
func (n Namespace) Team() string            { return n.key("team") }
func (n Namespace) Settings() string        { return n.key("site_settings") }
func (n Namespace) Threads() string         { return n.key("chats") }

// ThreadMessagesPrefix is the common prefix of every per-thread message key.
func (n Namespace) ThreadMessagesPrefix() string { return n.key("chat_messages_") }

// ThreadMessages returns the key holding threadID's messages.
func (n Namespace) ThreadMessages(threadID string) string {
	return n.ThreadMessagesPrefix() + threadID
}

// ThreadID extracts the thread id from a per-thread message key.
func (n Namespace) ThreadID(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, n.ThreadMessagesPrefix())
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Signal maps a storage key to the signal kind its writes produce.
func (n Namespace) Signal(key string) (string, bool) {
	switch key {
	case n.Threads():
		return ThreadsChanged, true
	case n.Contact():
		return ContactInfoChanged, true
	case n.ContactMessages():
		return ContactMessagesChanged, true
	case n.Gallery():
		return GalleryChanged, true
	case n.Team():
		return TeamChanged, true
	case n.Settings():
		return SettingsChanged, true
	}
	if _, ok := n.ThreadID(key); ok {
		return ThreadMessagesChanged, true
	}
	return "", false
}

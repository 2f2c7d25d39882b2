// Package contact holds the workshop's contact details and the messages
// visitors leave through the contact form.
package contact

import (
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/collection"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// Info is the contact details singleton.
type Info struct {
	Phone1        string `json:"phone1"`
	Phone2        string `json:"phone2"`
	Email1        string `json:"email1"`
	Email2        string `json:"email2"`
	Address       string `json:"address"`
	AddressDetail string `json:"addressDetail"`
}

// DefaultInfo is persisted the first time contact details are read.
var DefaultInfo = Info{
	Phone1:        "۰۲۱-۱۲۳۴۵۶۷۸",
	Phone2:        "۰۹۱۲-۱۲۳-۴۵۶۷",
	Email1:        "info@fiberglass-workshop.ir",
	Email2:        "sales@fiberglass-workshop.ir",
	Address:       "تهران، منطقه صنعتی",
	AddressDetail: "خیابان صنعت، پلاک ۱۲۳",
}

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

// NewMessage is the visitor-supplied part of a Message.
type NewMessage struct {
	Name    string
	Phone   string
	Subject string
	Message string
}

// MessagePatch updates the fields that are set.
type MessagePatch struct {
	Name    *string
	Phone   *string
	Subject *string
	Message *string
	IsRead  *bool
}

func (p MessagePatch) apply(m *Message) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Phone != nil {
		m.Phone = *p.Phone
	}
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.Message != nil {
		m.Message = *p.Message
	}
	if p.IsRead != nil {
		m.IsRead = *p.IsRead
	}
}

// Repository owns the contact info and contact message keys.
type Repository struct {
	mu       sync.Mutex
	info     *collection.Doc[Info]
	messages *collection.List[Message]
	bus      *bus.Bus
	logger   *zap.Logger
	now      collection.Clock
}

// New creates a contact repository over store.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("contact")
	return &Repository{
		info:     collection.NewDoc[Info](store, ns.Contact(), logger),
		messages: collection.NewList[Message](store, ns.ContactMessages(), logger),
		bus:      b,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(c collection.Clock) *Repository {
	r.now = c
	return r
}

// Info returns the stored contact details. Missing or invalid details are
// replaced by DefaultInfo, which is persisted so later reads are stable.
func (r *Repository) Info() Info {
	if info, ok := r.info.Load(); ok && info.Phone1 != "" {
		return info
	}
	r.info.Save(DefaultInfo)
	return DefaultInfo
}

// SaveInfo replaces the contact details.
func (r *Repository) SaveInfo(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info.Save(info) {
		r.bus.Signal(keys.ContactInfoChanged, r.info.Key())
	}
}

// Messages returns contact messages, newest first.
func (r *Repository) Messages() []Message {
	msgs, _ := r.messages.Load()
	return msgs
}

// Message returns the message with id, or nil.
func (r *Repository) Message(id string) *Message {
	for _, m := range r.Messages() {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// AddMessage stores a new unread message at the front of the list.
func (r *Repository) AddMessage(in NewMessage) Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	m := Message{
		ID:        collection.NewID(now),
		Name:      in.Name,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: now,
	}
	msgs, _ := r.messages.Load()
	r.saveMessages(append([]Message{m}, msgs...))
	return m
}

// UpdateMessage merges the set fields of p into the message. It returns nil
// and writes nothing when id is unknown.
func (r *Repository) UpdateMessage(id string, p MessagePatch) *Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, _ := r.messages.Load()
	for i := range msgs {
		if msgs[i].ID == id {
			p.apply(&msgs[i])
			r.saveMessages(msgs)
			m := msgs[i]
			return &m
		}
	}
	return nil
}

// MarkMessageRead flags the message read.
func (r *Repository) MarkMessageRead(id string) bool {
	read := true
	return r.UpdateMessage(id, MessagePatch{IsRead: &read}) != nil
}

// DeleteMessage removes the message; false when id is unknown.
func (r *Repository) DeleteMessage(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, _ := r.messages.Load()
	kept := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(msgs) {
		return false
	}
	r.saveMessages(kept)
	return true
}

// UnreadCount returns the number of unread messages.
func (r *Repository) UnreadCount() int {
	n := 0
	for _, m := range r.Messages() {
		if !m.IsRead {
			n++
		}
	}
	return n
}

func (r *Repository) saveMessages(msgs []Message) {
	if r.messages.Save(msgs) {
		r.bus.Signal(keys.ContactMessagesChanged, r.messages.Key())
	}
}

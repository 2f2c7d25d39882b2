// Package chat stores customer/admin conversations. The thread list is kept
// most-recently-active first; each thread's messages live under their own
// key in send order.
package chat

import (
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/collection"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// Repository owns the thread list key and every per-thread message key.
type Repository struct {
	mu      sync.Mutex
	store   kv.Store
	ns      keys.Namespace
	threads *collection.List[Thread]
	bus     *bus.Bus
	logger  *zap.Logger
	now     collection.Clock
}

// New creates a chat repository over store.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("chat")
	return &Repository{
		store:   store,
		ns:      ns,
		threads: collection.NewList[Thread](store, ns.Threads(), logger),
		bus:     b,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(c collection.Clock) *Repository {
	r.now = c
	return r
}

func (r *Repository) messages(threadID string) *collection.List[Message] {
	return collection.NewList[Message](r.store, r.ns.ThreadMessages(threadID), r.logger)
}

// Threads returns every thread, most recently active first.
func (r *Repository) Threads() []Thread {
	threads, _ := r.threads.Load()
	return threads
}

// Thread returns the thread with id, or nil.
func (r *Repository) Thread(id string) *Thread {
	for _, t := range r.Threads() {
		if t.ID == id {
			return &t
		}
	}
	return nil
}

// ThreadByPhone returns the customer's thread, or nil.
func (r *Repository) ThreadByPhone(phone string) *Thread {
	for _, t := range r.Threads() {
		if t.CustomerPhone == phone {
			return &t
		}
	}
	return nil
}

// CreateThread returns the existing thread for phone unchanged, or creates
// an empty one at the front of the list.
func (r *Repository) CreateThread(name, phone string) Thread {
	r.mu.Lock()
	defer r.mu.Unlock()

	threads, _ := r.threads.Load()
	for _, t := range threads {
		if t.CustomerPhone == phone {
			return t
		}
	}

	now := r.now()
	t := Thread{
		ID:              collection.NewID(now),
		CustomerName:    name,
		CustomerPhone:   phone,
		LastMessageTime: now,
		CreatedAt:       now,
	}
	threads = append([]Thread{t}, threads...)
	if r.threads.Save(threads) {
		r.bus.Signal(keys.ThreadsChanged, r.threads.Key())
	}
	return t
}

// Messages returns a thread's messages in send order.
func (r *Repository) Messages(threadID string) []Message {
	msgs, _ := r.messages(threadID).Load()
	return msgs
}

// Send appends a message and moves its thread to the front. Only customer
// messages raise the unread count. ok is false when the thread does not
// exist or sender is unknown; nothing is written then.
func (r *Repository) Send(threadID, text string, sender Sender) (Message, bool) {
	if !sender.Valid() {
		r.logger.Warn("rejecting message from unknown sender", zap.String("sender", string(sender)))
		return Message{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	threads, _ := r.threads.Load()
	idx := indexOf(threads, threadID)
	if idx == -1 {
		return Message{}, false
	}

	now := r.now()
	msg := Message{
		ID:        collection.NewID(now),
		ChatID:    threadID,
		Sender:    sender,
		Message:   text,
		CreatedAt: now,
	}
	list := r.messages(threadID)
	msgs, _ := list.Load()
	if list.Save(append(msgs, msg)) {
		r.bus.Signal(keys.ThreadMessagesChanged, list.Key())
	}

	t := threads[idx]
	t.LastMessage = text
	t.LastMessageTime = now
	if sender == Customer {
		t.UnreadCount++
	}
	reordered := make([]Thread, 0, len(threads))
	reordered = append(reordered, t)
	reordered = append(reordered, threads[:idx]...)
	reordered = append(reordered, threads[idx+1:]...)
	if r.threads.Save(reordered) {
		r.bus.Signal(keys.ThreadsChanged, r.threads.Key())
	}
	return msg, true
}

// MarkRead clears the thread's unread count and marks its customer messages
// read. Admin messages keep their flag. Repeated calls change nothing. An
// unknown thread is a no-op; its message key is left untouched.
func (r *Repository) MarkRead(threadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	threads, _ := r.threads.Load()
	idx := indexOf(threads, threadID)
	if idx == -1 {
		return
	}
	if threads[idx].UnreadCount != 0 {
		threads[idx].UnreadCount = 0
		if r.threads.Save(threads) {
			r.bus.Signal(keys.ThreadsChanged, r.threads.Key())
		}
	}

	list := r.messages(threadID)
	msgs, _ := list.Load()
	changed := false
	for i := range msgs {
		if msgs[i].Sender == Customer && !msgs[i].IsRead {
			msgs[i].IsRead = true
			changed = true
		}
	}
	if changed && list.Save(msgs) {
		r.bus.Signal(keys.ThreadMessagesChanged, list.Key())
	}
}

// Delete removes the thread and its message collection. It reports false
// when no thread matched.
func (r *Repository) Delete(threadID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	threads, _ := r.threads.Load()
	idx := indexOf(threads, threadID)
	if idx == -1 {
		return false
	}
	remaining := append(threads[:idx:idx], threads[idx+1:]...)
	if r.threads.Save(remaining) {
		r.bus.Signal(keys.ThreadsChanged, r.threads.Key())
	}
	list := r.messages(threadID)
	if list.Remove() {
		r.bus.Signal(keys.ThreadMessagesChanged, list.Key())
	}
	return true
}

// TotalUnread sums the unread counts as currently persisted.
func (r *Repository) TotalUnread() int {
	total := 0
	for _, t := range r.Threads() {
		total += t.UnreadCount
	}
	return total
}

func indexOf(threads []Thread, id string) int {
	for i, t := range threads {
		if t.ID == id {
			return i
		}
	}
	return -1
}

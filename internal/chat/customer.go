package chat

import (
	"github.com/matheus3301/fiberglass/internal/keys"
	"go.uber.org/zap"
)

// Register opens (or reopens) the customer's thread and remembers the
// customer on this origin so the chat view can resume it later.
func (r *Repository) Register(name, phone string) Thread {
	t := r.CreateThread(name, phone)
	if err := r.store.Set(keys.CustomerPhone, phone); err != nil {
		r.logger.Error("failed to remember customer phone", zap.Error(err))
	}
	if err := r.store.Set(keys.CustomerName, name); err != nil {
		r.logger.Error("failed to remember customer name", zap.Error(err))
	}
	return t
}

// Resume returns the remembered customer's thread, or nil when no customer
// is remembered or their thread was deleted.
func (r *Repository) Resume() *Thread {
	phone, ok, err := r.store.Get(keys.CustomerPhone)
	if err != nil || !ok || phone == "" {
		return nil
	}
	return r.ThreadByPhone(phone)
}

// RememberedName returns the name the customer last registered with.
func (r *Repository) RememberedName() string {
	name, _, _ := r.store.Get(keys.CustomerName)
	return name
}

// Forget drops the remembered customer.
func (r *Repository) Forget() {
	for _, k := range []string{keys.CustomerPhone, keys.CustomerName} {
		if err := r.store.Remove(k); err != nil {
			r.logger.Error("failed to forget customer", zap.String("key", k), zap.Error(err))
		}
	}
}

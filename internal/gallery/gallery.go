// Package gallery stores the workshop's photo and video gallery, newest first.
package gallery

import (
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/collection"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// MediaType is the kind of asset an item points at.
type MediaType string

const (
	Image MediaType = "image"
	Video MediaType = "video"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool { return t == Image || t == Video }

// Item is one gallery entry. URL is opaque: an external address or an
// embedded data URI.
type Item struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewItem is the caller-supplied part of an Item.
type NewItem struct {
	Type        MediaType
	URL         string
	Title       string
	Description string
}

// Patch updates the fields that are set.
type Patch struct {
	Type        *MediaType
	URL         *string
	Title       *string
	Description *string
}

func (p Patch) apply(it *Item) {
	if p.Type != nil {
		it.Type = *p.Type
	}
	if p.URL != nil {
		it.URL = *p.URL
	}
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
}

// Repository owns the gallery key.
type Repository struct {
	mu     sync.Mutex
	items  *collection.List[Item]
	bus    *bus.Bus
	logger *zap.Logger
	now    collection.Clock
}

// New creates a gallery repository over store.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gallery")
	return &Repository{
		items:  collection.NewList[Item](store, ns.Gallery(), logger),
		bus:    b,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(c collection.Clock) *Repository {
	r.now = c
	return r
}

// Items returns the gallery, newest first.
func (r *Repository) Items() []Item {
	items, _ := r.items.Load()
	return items
}

// Item returns the item with id, or nil.
func (r *Repository) Item(id string) *Item {
	for _, it := range r.Items() {
		if it.ID == id {
			return &it
		}
	}
	return nil
}

// Add puts a new item at the front of the gallery.
func (r *Repository) Add(in NewItem) Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !in.Type.Valid() {
		r.logger.Warn("unknown media type, storing as image", zap.String("type", string(in.Type)))
		in.Type = Image
	}
	now := r.now()
	it := Item{
		ID:          collection.NewID(now),
		Type:        in.Type,
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
	}
	items, _ := r.items.Load()
	r.save(append([]Item{it}, items...))
	return it
}

// Update merges the set fields of p into the item; nil when id is unknown.
func (r *Repository) Update(id string, p Patch) *Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Type != nil && !p.Type.Valid() {
		r.logger.Warn("ignoring unknown media type in update", zap.String("id", id), zap.String("type", string(*p.Type)))
		p.Type = nil
	}
	items, _ := r.items.Load()
	for i := range items {
		if items[i].ID == id {
			p.apply(&items[i])
			r.save(items)
			it := items[i]
			return &it
		}
	}
	return nil
}

// Delete removes the item; false when id is unknown.
func (r *Repository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, _ := r.items.Load()
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false
	}
	r.save(kept)
	return true
}

func (r *Repository) save(items []Item) {
	if r.items.Save(items) {
		r.bus.Signal(keys.GalleryChanged, r.items.Key())
	}
}

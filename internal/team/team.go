// Package team stores the workshop's team roster. An origin with no roster
// gets the seed members; stored seed members missing optional profile fields
// read with the seed's values for those fields.
package team

import (
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/collection"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// Member is one person on the roster. Image is a base64 data URI.
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Color        Color     `json:"color"`
	CreatedAt    time.Time `json:"createdAt"`
	Bio          string    `json:"bio"`
	Experience   string    `json:"experience"`
	Skills       []string  `json:"skills"`
	Description  string    `json:"description"`
	Achievements []string  `json:"achievements"`
	Phone        string    `json:"phone"`
	Image        string    `json:"image"`
}

// NewMember is the caller-supplied part of a Member. An empty Color is
// assigned with AutoColor.
type NewMember struct {
	Name         string
	Role         string
	Color        Color
	Bio          string
	Experience   string
	Skills       []string
	Description  string
	Achievements []string
	Phone        string
	Image        string
}

// Patch updates the fields that are set.
type Patch struct {
	Name         *string
	Role         *string
	Color        *Color
	Bio          *string
	Experience   *string
	Skills       *[]string
	Description  *string
	Achievements *[]string
	Phone        *string
	Image        *string
}

func (p Patch) apply(m *Member) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.Name, p.Name)
	set(&m.Role, p.Role)
	set(&m.Bio, p.Bio)
	set(&m.Experience, p.Experience)
	set(&m.Description, p.Description)
	set(&m.Phone, p.Phone)
	set(&m.Image, p.Image)
	if p.Color != nil {
		m.Color = *p.Color
	}
	if p.Skills != nil {
		m.Skills = slices.Clone(*p.Skills)
	}
	if p.Achievements != nil {
		m.Achievements = slices.Clone(*p.Achievements)
	}
}

// Repository owns the team key.
type Repository struct {
	mu      sync.Mutex
	members *collection.List[record]
	bus     *bus.Bus
	logger  *zap.Logger
	now     collection.Clock
}

// New creates a team repository over store.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("team")
	return &Repository{
		members: collection.NewList[record](store, ns.Team(), logger),
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

// Members returns the roster in stored order. A missing, corrupt or empty
// roster is replaced by the persisted seed.
func (r *Repository) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *Repository) load() []Member {
	stored, ok := r.members.Load()
	if !ok || len(stored) == 0 {
		seed := Seed(r.now())
		r.members.Save(toRecords(seed))
		return seed
	}
	seed := make(map[string]Member)
	for _, s := range Seed(time.Time{}) {
		seed[s.ID] = s
	}
	members := make([]Member, len(stored))
	for i, rec := range stored {
		members[i] = rec.member(seed)
	}
	return members
}

// Member returns the member with id, or nil.
func (r *Repository) Member(id string) *Member {
	for _, m := range r.Members() {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// Add appends a new member to the roster.
func (r *Repository) Add(in NewMember) Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.load()
	color := in.Color
	if color == "" {
		color = AutoColor(len(members))
	} else if !color.Valid() {
		r.logger.Warn("unknown color, assigning automatically", zap.String("color", string(color)))
		color = AutoColor(len(members))
	}
	now := r.now()
	m := Member{
		ID:           collection.NewID(now),
		Name:         in.Name,
		Role:         in.Role,
		Color:        color,
		CreatedAt:    now,
		Bio:          in.Bio,
		Experience:   in.Experience,
		Skills:       slices.Clone(in.Skills),
		Description:  in.Description,
		Achievements: slices.Clone(in.Achievements),
		Phone:        in.Phone,
		Image:        in.Image,
	}
	r.save(append(members, m))
	return m
}

// Update merges the set fields of p into the member; nil when id is unknown.
func (r *Repository) Update(id string, p Patch) *Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Color != nil && !p.Color.Valid() {
		r.logger.Warn("ignoring unknown color in update", zap.String("id", id), zap.String("color", string(*p.Color)))
		p.Color = nil
	}
	members := r.load()
	for i := range members {
		if members[i].ID == id {
			p.apply(&members[i])
			r.save(members)
			m := members[i]
			return &m
		}
	}
	return nil
}

// Delete removes the member; false when id is unknown.
func (r *Repository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.load()
	kept := make([]Member, 0, len(members))
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return false
	}
	r.save(kept)
	return true
}

// Reset replaces the roster with the seed.
func (r *Repository) Reset() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	seed := Seed(r.now())
	r.save(seed)
	return seed
}

func (r *Repository) save(members []Member) {
	if r.members.Save(toRecords(members)) {
		r.bus.Signal(keys.TeamChanged, r.members.Key())
	}
}

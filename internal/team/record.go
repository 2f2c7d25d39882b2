package team

import (
	"slices"
	"time"
)

// record is how a Member is stored. The optional profile fields are
// pointers so a field that was never written reads as nil, while one an
// admin cleared reads as a pointer to the empty value.
type record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Color        Color     `json:"color"`
	CreatedAt    time.Time `json:"createdAt"`
	Bio          *string   `json:"bio,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Skills       *[]string `json:"skills,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Achievements *[]string `json:"achievements,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Image        *string   `json:"image,omitempty"`
}

// toRecord writes every field, so a saved member never picks up seed values.
func toRecord(m Member) record {
	list := func(v []string) *[]string {
		if v == nil {
			v = []string{}
		}
		return &v
	}
	return record{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Color:        m.Color,
		CreatedAt:    m.CreatedAt,
		Bio:          &m.Bio,
		Experience:   &m.Experience,
		Skills:       list(m.Skills),
		Description:  &m.Description,
		Achievements: list(m.Achievements),
		Phone:        &m.Phone,
		Image:        &m.Image,
	}
}

func toRecords(members []Member) []record {
	out := make([]record, len(members))
	for i, m := range members {
		out[i] = toRecord(m)
	}
	return out
}

// member converts r, taking each absent optional field from seed when the
// seed has a member with r's id.
func (r record) member(seed map[string]Member) Member {
	m := Member{
		ID:        r.ID,
		Name:      r.Name,
		Role:      r.Role,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
	}
	s, seeded := seed[r.ID]
	str := func(dst *string, src *string, def string) {
		switch {
		case src != nil:
			*dst = *src
		case seeded:
			*dst = def
		}
	}
	list := func(dst *[]string, src *[]string, def []string) {
		switch {
		case src != nil:
			*dst = *src
		case seeded:
			*dst = slices.Clone(def)
		}
	}
	str(&m.Bio, r.Bio, s.Bio)
	str(&m.Experience, r.Experience, s.Experience)
	list(&m.Skills, r.Skills, s.Skills)
	str(&m.Description, r.Description, s.Description)
	list(&m.Achievements, r.Achievements, s.Achievements)
	str(&m.Phone, r.Phone, s.Phone)
	str(&m.Image, r.Image, s.Image)
	return m
}

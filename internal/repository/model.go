package repository

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Record is a saved movie. Field names follow the remote metadata API so the
// stored blob stays readable by any client of the same collection.
type Record struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average" validate:"gte=0,lte=10"`
	ReleaseDate string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Overview    string  `json:"overview,omitempty"`
	GenreIDs    []int   `json:"genre_ids,omitempty" validate:"omitempty,dive,gt=0"`
}

// Validate checks the field rules of a single record. It guards new input
// only; stored collections are never rejected for field values.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: record %d: %w", ErrInvalidRecord, r.ID, err)
	}
	return nil
}

// Equal reports value equality. A nil and an empty genre list are equal.
func (r Record) Equal(o Record) bool {
	return r.ID == o.ID &&
		r.Title == o.Title &&
		r.PosterPath == o.PosterPath &&
		r.VoteAverage == o.VoteAverage &&
		r.ReleaseDate == o.ReleaseDate &&
		r.Overview == o.Overview &&
		slices.Equal(r.GenreIDs, o.GenreIDs)
}

func (r Record) clone() Record {
	if r.GenreIDs != nil {
		r.GenreIDs = slices.Clone(r.GenreIDs)
	}
	return r
}

// Collection is the ordered, identity-unique list of saved movies.
// Insertion order is the only ordering; nothing sorts it.
type Collection []Record

// Index returns the position of id, or -1.
func (c Collection) Index(id int64) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) Contains(id int64) bool {
	return c.Index(id) >= 0
}

// With returns a copy with rec appended, or an unchanged copy when the
// identity is already present.
func (c Collection) With(rec Record) Collection {
	out := c.Clone()
	if out.Contains(rec.ID) {
		return out
	}
	return append(out, rec.clone())
}

// Without returns a copy with the record matching id filtered out.
func (c Collection) Without(id int64) Collection {
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if r.ID != id {
			out = append(out, r.clone())
		}
	}
	return out
}

// Clone deep-copies the collection. The result is never nil.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i := range c {
		out[i] = c[i].clone()
	}
	return out
}

func (c Collection) Equal(o Collection) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// IDs lists identities in collection order.
func (c Collection) IDs() []int64 {
	ids := make([]int64, len(c))
	for i := range c {
		ids[i] = c[i].ID
	}
	return ids
}

// Validate checks the uniqueness of identities. Field rules are not applied,
// so whatever a client stored still loads and saves.
func (c Collection) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, r := range c {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate identity %d", ErrInvalidRecord, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

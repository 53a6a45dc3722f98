package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dune() Record {
	return Record{ID: 1, Title: "Dune", PosterPath: "/d.jpg", VoteAverage: 7.8, ReleaseDate: "2021-10-22"}
}

func createTestCollection() Collection {
	return Collection{
		dune(),
		{ID: 2, Title: "Arrival", PosterPath: "/a.jpg", VoteAverage: 7.6, ReleaseDate: "2016-11-11", Overview: "Linguist meets heptapods.", GenreIDs: []int{18, 878}},
		{ID: 3, Title: "Stalker", VoteAverage: 8.1},
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr bool
	}{
		{"valid", func(r *Record) {}, false},
		{"empty poster and date", func(r *Record) { r.PosterPath = ""; r.ReleaseDate = "" }, false},
		{"rating at bounds", func(r *Record) { r.VoteAverage = 10 }, false},
		{"zero id", func(r *Record) { r.ID = 0 }, true},
		{"negative id", func(r *Record) { r.ID = -4 }, true},
		{"empty title", func(r *Record) { r.Title = "" }, false},
		{"rating above ten", func(r *Record) { r.VoteAverage = 10.5 }, true},
		{"negative rating", func(r *Record) { r.VoteAverage = -1 }, true},
		{"bad release date", func(r *Record) { r.ReleaseDate = "22/10/2021" }, true},
		{"non-positive genre", func(r *Record) { r.GenreIDs = []int{12, 0} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := dune()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRecord))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollection_WithAppendsUnlessPresent(t *testing.T) {
	c := Collection{dune()}

	added := c.With(Record{ID: 2, Title: "Arrival"})
	assert.Equal(t, []int64{1, 2}, added.IDs())
	assert.Len(t, c, 1, "With must not modify the receiver")

	again := added.With(Record{ID: 1, Title: "Dune (duplicate)"})
	assert.True(t, again.Equal(added))
	assert.Equal(t, "Dune", again[0].Title)
}

func TestCollection_Without(t *testing.T) {
	c := createTestCollection()

	out := c.Without(2)
	assert.Equal(t, []int64{1, 3}, out.IDs())
	assert.Len(t, c, 3)

	same := c.Without(99)
	assert.True(t, same.Equal(c))
}

func TestCollection_CloneIsDeep(t *testing.T) {
	c := createTestCollection()
	cl := c.Clone()
	cl[1].GenreIDs[0] = 99
	cl[0].Title = "changed"

	assert.Equal(t, 18, c[1].GenreIDs[0])
	assert.Equal(t, "Dune", c[0].Title)
	assert.NotNil(t, Collection(nil).Clone())
}

func TestCollection_Equal(t *testing.T) {
	a := Collection{{ID: 1, Title: "A", GenreIDs: nil}}
	b := Collection{{ID: 1, Title: "A", GenreIDs: []int{}}}
	assert.True(t, a.Equal(b), "nil and empty genre lists compare equal")

	reordered := Collection{createTestCollection()[1], createTestCollection()[0]}
	assert.False(t, createTestCollection()[:2].Equal(reordered), "order matters")
	assert.True(t, Collection{}.Equal(nil))
}

func TestCollection_ValidateRejectsDuplicates(t *testing.T) {
	c := Collection{dune(), dune()}
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
	assert.NoError(t, createTestCollection().Validate())
}

func TestCollection_ValidateIgnoresFieldRules(t *testing.T) {
	c := Collection{dune(), {ID: 2, Title: ""}, {ID: 3, Title: "Heat", VoteAverage: 42, ReleaseDate: "1995"}}
	assert.NoError(t, c.Validate())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
	}{
		{nil, KindNone},
		{ErrStorageUnavailable, KindStorageUnavailable},
		{ErrWriteRejected, KindWriteRejected},
		{ErrDeserializationFailed, KindDeserializationFailed},
		{ErrInvalidRecord, KindInvalidRecord},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), "KindOf(%v)", tt.err)
	}
}

package models

import "time"

// Genres is the closed set of genres a movie can be filed under.
var Genres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Horror",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
	"Western",
}

// ValidGenre reports whether genre belongs to the closed genre set.
func ValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Collection filter values accepted by the derived movie view.
const (
	FilterAll       = "all"
	FilterWatched   = "watched"
	FilterUnwatched = "unwatched"
	FilterTopRated  = "top-rated"
)

// Collection sort values accepted by the derived movie view.
const (
	SortDate   = "date"
	SortRating = "rating"
	SortTitle  = "title"
)

// GenreAll selects every genre when used as a genre filter.
const GenreAll = "all"

// Movie is a single tracked entry in the user's collection.
type Movie struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Rating    int    `json:"rating"` // 1-10
	Watched   bool   `json:"watched"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, immutable
	PosterURL string `json:"posterUrl,omitempty"`
}

// MovieInput captures the caller-supplied fields for a new movie. The id and
// creation timestamp are assigned by the collection service.
type MovieInput struct {
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Rating    int    `json:"rating"`
	Watched   bool   `json:"watched"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// MovieUpdate is a partial edit; nil fields are left untouched. The id and
// creation timestamp cannot be changed through an edit.
type MovieUpdate struct {
	Title     *string `json:"title,omitempty"`
	Genre     *string `json:"genre,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
	Watched   *bool   `json:"watched,omitempty"`
	PosterURL *string `json:"posterUrl,omitempty"`
}

// Stats aggregates watch-state counts over the whole collection.
type Stats struct {
	Total     int `json:"total"`
	Watched   int `json:"watched"`
	Unwatched int `json:"unwatched"`
}

// SeedMovies returns the built-in example collection used when nothing has
// been persisted yet.
func SeedMovies(now time.Time) []Movie {
	return []Movie{
		{
			ID:        "mock-1",
			Title:     "Troy",
			Genre:     "War",
			Rating:    7,
			Watched:   false,
			CreatedAt: now.Add(-7 * 24 * time.Hour).UnixMilli(),
			PosterURL: "https://upload.wikimedia.org/wikipedia/en/9/9f/Troy_03500296.png",
		},
		{
			ID:        "mock-2",
			Title:     "The Covenant",
			Genre:     "War",
			Rating:    10,
			Watched:   false,
			CreatedAt: now.Add(-3 * 24 * time.Hour).UnixMilli(),
			PosterURL: "https://m.media-amazon.com/images/M/MV5BMTA0MTgwYWUtMTA5Ni00NTA1LTk5ZmUtYzQxMDU4MTgwMmM1XkEyXkFqcGc@._V1_.jpg",
		},
	}
}

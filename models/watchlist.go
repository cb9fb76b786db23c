package models

// Watchlist is a named, user-created grouping of movies, independent of
// watched status.
type Watchlist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, immutable
}

// DefaultWatchlists returns the three well-known watchlists seeded on first
// run. Their ids are fixed so clients can link to them.
func DefaultWatchlists() []Watchlist {
	return []Watchlist{
		{ID: "favorites", Name: "Favorites", CreatedAt: 0},
		{ID: "must-watch", Name: "Must Watch", CreatedAt: 0},
		{ID: "classics", Name: "Classics", CreatedAt: 0},
	}
}

package collection

import (
	"encoding/json"
	"errors"
	"iter"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"flicksvault/internal/kv"
	"flicksvault/models"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const storageKey = "movie-tracker-data"

// Movies with this rating or above count as top rated.
const topRatedFloor = 7

var ErrStoreRequired = errors.New("storage not provided")

// Query narrows and orders the derived movie view. The zero value selects
// every movie sorted by most recent addition.
type Query struct {
	Search string // case-insensitive substring match on title
	Filter string // models.FilterAll, FilterWatched, FilterUnwatched, FilterTopRated
	Sort   string // models.SortDate, SortRating, SortTitle
	Genre  string // exact genre, or models.GenreAll / empty for every genre
}

// Service owns the authoritative in-memory movie collection and mirrors it to
// the storage port on every change.
type Service struct {
	mu        sync.RWMutex
	store     kv.Store
	movies    []models.Movie
	now       func() time.Time
	newID     func() string
	listeners []func()
}

// Option customises a Service at construction time.
type Option func(*Service)

// WithClock overrides the wall clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the id source used for new records.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService loads the persisted collection from the store, seeding the
// built-in example movies when nothing usable has been persisted yet.
func NewService(store kv.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	svc := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.load()
	return svc, nil
}

func (s *Service) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(storageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.movies = models.SeedMovies(s.now())
		s.persistLocked()
		return
	}
	if err != nil {
		log.Printf("collection: read persisted movies: %v", err)
		s.movies = models.SeedMovies(s.now())
		return
	}

	var stored []models.Movie
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("collection: decode persisted movies: %v", err)
		s.movies = models.SeedMovies(s.now())
		return
	}
	if len(stored) == 0 {
		// An explicitly empty payload is treated like a first run.
		s.movies = models.SeedMovies(s.now())
		return
	}

	s.movies = stored
}

// Add creates a movie from the supplied fields and prepends it, so the
// newest addition leads the default view. Field validation is the caller's
// responsibility.
func (s *Service) Add(input models.MovieInput) models.Movie {
	s.mu.Lock()
	movie := models.Movie{
		ID:        s.newID(),
		Title:     input.Title,
		Genre:     input.Genre,
		Rating:    input.Rating,
		Watched:   input.Watched,
		CreatedAt: s.now().UnixMilli(),
		PosterURL: input.PosterURL,
	}
	s.movies = append([]models.Movie{movie}, s.movies...)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return movie
}

// Delete removes the movie with the given id and reports whether it existed.
func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.movies = append(s.movies[:idx], s.movies[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// ToggleWatched flips the watched flag. Unknown ids are a silent no-op.
func (s *Service) ToggleWatched(id string) (models.Movie, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Movie{}, false
	}
	s.movies[idx].Watched = !s.movies[idx].Watched
	movie := s.movies[idx]
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return movie, true
}

// Edit shallow-merges the provided fields into the existing record. The id
// and creation timestamp are not editable. Unknown ids are a silent no-op.
func (s *Service) Edit(id string, update models.MovieUpdate) (models.Movie, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Movie{}, false
	}

	movie := &s.movies[idx]
	if update.Title != nil {
		movie.Title = *update.Title
	}
	if update.Genre != nil {
		movie.Genre = *update.Genre
	}
	if update.Rating != nil {
		movie.Rating = *update.Rating
	}
	if update.Watched != nil {
		movie.Watched = *update.Watched
	}
	if update.PosterURL != nil {
		movie.PosterURL = *update.PosterURL
	}
	updated := *movie
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return updated, true
}

// Get returns the movie with the given id.
func (s *Service) Get(id string) (models.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.movies[idx], true
	}
	return models.Movie{}, false
}

// All returns the whole collection in stored order, newest first.
func (s *Service) All() []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Movie, len(s.movies))
	copy(out, s.movies)
	return out
}

// Movies returns the derived filtered-and-sorted view as a restartable
// sequence. Every iteration recomputes from the current collection, so the
// view is never stale.
func (s *Service) Movies(q Query) iter.Seq[models.Movie] {
	return func(yield func(models.Movie) bool) {
		for _, movie := range s.filteredSorted(q) {
			if !yield(movie) {
				return
			}
		}
	}
}

func (s *Service) filteredSorted(q Query) []models.Movie {
	s.mu.RLock()
	needle := strings.ToLower(q.Search)
	matched := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		if needle != "" && !strings.Contains(strings.ToLower(m.Title), needle) {
			continue
		}
		switch q.Filter {
		case models.FilterWatched:
			if !m.Watched {
				continue
			}
		case models.FilterUnwatched:
			if m.Watched {
				continue
			}
		case models.FilterTopRated:
			if m.Rating < topRatedFloor {
				continue
			}
		}
		if q.Genre != "" && q.Genre != models.GenreAll && m.Genre != q.Genre {
			continue
		}
		matched = append(matched, m)
	}
	s.mu.RUnlock()

	// Stable sorts keep ties in the order the filter produced.
	switch q.Sort {
	case models.SortRating:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Rating > matched[j].Rating
		})
	case models.SortTitle:
		c := collate.New(language.English)
		sort.SliceStable(matched, func(i, j int) bool {
			return c.CompareString(matched[i].Title, matched[j].Title) < 0
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt > matched[j].CreatedAt
		})
	}

	return matched
}

// Stats returns watch-state counts over the whole collection.
func (s *Service) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.Stats{Total: len(s.movies)}
	for _, m := range s.movies {
		if m.Watched {
			stats.Watched++
		} else {
			stats.Unwatched++
		}
	}
	return stats
}

// WatchedGenres returns the genres of watched movies, de-duplicated in
// first-seen order.
func (s *Service) WatchedGenres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for _, m := range s.movies {
		if !m.Watched {
			continue
		}
		if _, ok := seen[m.Genre]; ok {
			continue
		}
		seen[m.Genre] = struct{}{}
		genres = append(genres, m.Genre)
	}
	return genres
}

// WatchedByGenre returns the watched movies matching exactly one genre.
func (s *Service) WatchedByGenre(genre string) []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Movie, 0)
	for _, m := range s.movies {
		if m.Watched && m.Genre == genre {
			out = append(out, m)
		}
	}
	return out
}

// Subscribe registers a listener invoked after every committed mutation, so
// callers can re-derive their views.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) indexLocked(id string) int {
	for i, m := range s.movies {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked mirrors the full collection to storage. A write failure is
// logged and the in-memory state stays authoritative for the session.
func (s *Service) persistLocked() {
	data, err := json.MarshalIndent(s.movies, "", "  ")
	if err != nil {
		log.Printf("collection: encode movies: %v", err)
		return
	}
	if err := s.store.Set(storageKey, data); err != nil {
		log.Printf("collection: persist movies: %v", err)
	}
}

func (s *Service) notify() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

package watchlists

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"flicksvault/internal/kv"
	"flicksvault/models"

	"github.com/google/uuid"
)

// Watchlists and the membership mapping persist under separate keys with no
// cross-key transaction, matching the single-user execution model.
const (
	watchlistsKey  = "movie-tracker-watchlists"
	membershipsKey = "movie-tracker-movie-watchlists"
)

var (
	ErrStoreRequired     = errors.New("storage not provided")
	ErrWatchlistNotFound = errors.New("watchlist not found")
)

// Service owns the named watchlists and the movie-to-watchlist membership
// mapping, each mirrored to its own storage key on every change.
type Service struct {
	mu          sync.RWMutex
	store       kv.Store
	watchlists  []models.Watchlist
	memberships map[string][]string // movie id -> watchlist ids, set semantics
	now         func() time.Time
	newID       func() string
	listeners   []func()
}

// Option customises a Service at construction time.
type Option func(*Service)

// WithClock overrides the wall clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the id source used for new watchlists.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService loads persisted watchlists and memberships. The three default
// watchlists are seeded only when no watchlist data has ever been persisted;
// a user who deleted all of them stays at zero on later runs.
func NewService(store kv.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	svc := &Service{
		store:       store,
		memberships: make(map[string][]string),
		now:         time.Now,
		newID:       uuid.NewString,
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

	data, err := s.store.Get(watchlistsKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.watchlists = models.DefaultWatchlists()
		s.persistWatchlistsLocked()
	case err != nil:
		log.Printf("watchlists: read persisted watchlists: %v", err)
		s.watchlists = models.DefaultWatchlists()
	default:
		var stored []models.Watchlist
		if err := json.Unmarshal(data, &stored); err != nil {
			log.Printf("watchlists: decode persisted watchlists: %v", err)
			s.watchlists = models.DefaultWatchlists()
		} else {
			s.watchlists = stored
		}
	}

	data, err = s.store.Get(membershipsKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Printf("watchlists: read membership mapping: %v", err)
		}
		return
	}
	var mapping map[string][]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		log.Printf("watchlists: decode membership mapping: %v", err)
		return
	}
	if mapping != nil {
		s.memberships = mapping
	}
}

// List returns every watchlist in stored order.
func (s *Service) List() []models.Watchlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Watchlist, len(s.watchlists))
	copy(out, s.watchlists)
	return out
}

// Get returns the watchlist with the given id.
func (s *Service) Get(id string) (models.Watchlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.watchlists[idx], true
	}
	return models.Watchlist{}, false
}

// HasName reports whether a watchlist with this name already exists. The
// comparison is case-insensitive, matching the creation-time uniqueness rule.
func (s *Service) HasName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.watchlists {
		if strings.ToLower(w.Name) == name {
			return true
		}
	}
	return false
}

// Add appends a new watchlist with the trimmed name. Rejecting empty or
// duplicate names is the caller's responsibility.
func (s *Service) Add(name string) models.Watchlist {
	s.mu.Lock()
	w := models.Watchlist{
		ID:        s.newID(),
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now().UnixMilli(),
	}
	s.watchlists = append(s.watchlists, w)
	s.persistWatchlistsLocked()
	s.mu.Unlock()

	s.notify()
	return w
}

// Delete removes the watchlist and strips its id from every movie's
// membership set in the same logical step, so no dangling reference ever
// persists. Movies whose membership set becomes empty are dropped entirely.
func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.watchlists = append(s.watchlists[:idx], s.watchlists[idx+1:]...)
	for movieID, lists := range s.memberships {
		filtered := removeID(lists, id)
		if len(filtered) == 0 {
			delete(s.memberships, movieID)
		} else {
			s.memberships[movieID] = filtered
		}
	}
	s.persistWatchlistsLocked()
	s.persistMembershipsLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// AddMembership places a movie in a watchlist. Adding an already present
// pairing is a no-op; an unknown watchlist is rejected so the mapping never
// references a watchlist that does not exist.
func (s *Service) AddMembership(movieID, watchlistID string) error {
	s.mu.Lock()
	if s.indexLocked(watchlistID) < 0 {
		s.mu.Unlock()
		return ErrWatchlistNotFound
	}

	current := s.memberships[movieID]
	if containsID(current, watchlistID) {
		s.mu.Unlock()
		return nil
	}
	s.memberships[movieID] = append(current, watchlistID)
	s.persistMembershipsLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemoveMembership takes a movie out of a watchlist, dropping the movie's
// entry entirely once its membership set is empty. Reports whether the
// pairing existed.
func (s *Service) RemoveMembership(movieID, watchlistID string) bool {
	s.mu.Lock()
	current, ok := s.memberships[movieID]
	if !ok || !containsID(current, watchlistID) {
		s.mu.Unlock()
		return false
	}

	filtered := removeID(current, watchlistID)
	if len(filtered) == 0 {
		delete(s.memberships, movieID)
	} else {
		s.memberships[movieID] = filtered
	}
	s.persistMembershipsLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Toggle adds the pairing if absent and removes it if present. It returns
// whether the movie is in the watchlist after the call. Applying it twice
// leaves the mapping unchanged.
func (s *Service) Toggle(movieID, watchlistID string) (bool, error) {
	s.mu.RLock()
	present := containsID(s.memberships[movieID], watchlistID)
	s.mu.RUnlock()

	if present {
		s.RemoveMembership(movieID, watchlistID)
		return false, nil
	}
	if err := s.AddMembership(movieID, watchlistID); err != nil {
		return false, err
	}
	return true, nil
}

// MembershipsOf returns the watchlist ids a movie belongs to.
func (s *Service) MembershipsOf(movieID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.memberships[movieID]
	out := make([]string, len(current))
	copy(out, current)
	return out
}

// MembersOf returns the ids of movies belonging to a watchlist, sorted for a
// stable response; membership order is not meaningful.
func (s *Service) MembersOf(watchlistID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for movieID, lists := range s.memberships {
		if containsID(lists, watchlistID) {
			out = append(out, movieID)
		}
	}
	sort.Strings(out)
	return out
}

// RemoveMovie drops a deleted movie's entry from the membership mapping so
// the mapping never accumulates entries for movies that no longer exist.
func (s *Service) RemoveMovie(movieID string) {
	s.mu.Lock()
	if _, ok := s.memberships[movieID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.memberships, movieID)
	s.persistMembershipsLocked()
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers a listener invoked after every committed mutation.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) indexLocked(id string) int {
	for i, w := range s.watchlists {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persistWatchlistsLocked() {
	data, err := json.MarshalIndent(s.watchlists, "", "  ")
	if err != nil {
		log.Printf("watchlists: encode watchlists: %v", err)
		return
	}
	if err := s.store.Set(watchlistsKey, data); err != nil {
		log.Printf("watchlists: persist watchlists: %v", err)
	}
}

func (s *Service) persistMembershipsLocked() {
	data, err := json.MarshalIndent(s.memberships, "", "  ")
	if err != nil {
		log.Printf("watchlists: encode membership mapping: %v", err)
		return
	}
	if err := s.store.Set(membershipsKey, data); err != nil {
		log.Printf("watchlists: persist membership mapping: %v", err)
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

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

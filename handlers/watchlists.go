package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"flicksvault/models"
	"flicksvault/services/watchlists"

	"github.com/gorilla/mux"
)

type watchlistService interface {
	List() []models.Watchlist
	Get(id string) (models.Watchlist, bool)
	HasName(name string) bool
	Add(name string) models.Watchlist
	Delete(id string) bool
	Toggle(movieID, watchlistID string) (bool, error)
	AddMembership(movieID, watchlistID string) error
	RemoveMembership(movieID, watchlistID string) bool
	MembershipsOf(movieID string) []string
	MembersOf(watchlistID string) []string
}

var _ watchlistService = (*watchlists.Service)(nil)

type WatchlistsHandler struct {
	Service watchlistService
}

func NewWatchlistsHandler(service watchlistService) *WatchlistsHandler {
	return &WatchlistsHandler{Service: service}
}

// List returns every watchlist.
func (h *WatchlistsHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.List())
}

// Create adds a watchlist. Empty and duplicate names are rejected here; the
// store trusts its callers on both.
func (h *WatchlistsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if h.Service.HasName(name) {
		http.Error(w, "a watchlist with this name already exists", http.StatusConflict)
		return
	}

	list := h.Service.Add(name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Delete removes a watchlist along with all of its memberships.
func (h *WatchlistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if !h.Service.Delete(id) {
		http.Error(w, "watchlist not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Members returns the ids of movies in a watchlist.
func (h *WatchlistsHandler) Members(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if _, found := h.Service.Get(id); !found {
		http.Error(w, "watchlist not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.MembersOf(id))
}

// MovieMemberships returns the watchlist ids a movie belongs to.
func (h *WatchlistsHandler) MovieMemberships(w http.ResponseWriter, r *http.Request) {
	movieID, ok := requireID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.MembershipsOf(movieID))
}

// Toggle flips a movie's membership in a watchlist and returns the resulting
// state.
func (h *WatchlistsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	movieID, watchlistID, ok := h.requirePair(w, r)
	if !ok {
		return
	}

	inList, err := h.Service.Toggle(movieID, watchlistID)
	if errors.Is(err, watchlists.ErrWatchlistNotFound) {
		http.Error(w, "watchlist not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"inWatchlist": inList})
}

// AddMembership places a movie in a watchlist.
func (h *WatchlistsHandler) AddMembership(w http.ResponseWriter, r *http.Request) {
	movieID, watchlistID, ok := h.requirePair(w, r)
	if !ok {
		return
	}

	if err := h.Service.AddMembership(movieID, watchlistID); err != nil {
		if errors.Is(err, watchlists.ErrWatchlistNotFound) {
			http.Error(w, "watchlist not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMembership takes a movie out of a watchlist. Removing an absent
// pairing is a no-op, not an error.
func (h *WatchlistsHandler) RemoveMembership(w http.ResponseWriter, r *http.Request) {
	movieID, watchlistID, ok := h.requirePair(w, r)
	if !ok {
		return
	}

	h.Service.RemoveMembership(movieID, watchlistID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *WatchlistsHandler) requirePair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	vars := mux.Vars(r)
	movieID := strings.TrimSpace(vars["id"])
	watchlistID := strings.TrimSpace(vars["watchlistID"])
	if movieID == "" || watchlistID == "" {
		http.Error(w, "movie id and watchlist id are required", http.StatusBadRequest)
		return "", "", false
	}
	return movieID, watchlistID, true
}

package handlers

import (
	"encoding/json"
	"iter"
	"net/http"
	"strings"

	"flicksvault/models"
	"flicksvault/services/collection"

	"github.com/gorilla/mux"
)

// DefaultMaxPosterBytes caps embedded poster payloads at 2 MiB.
const DefaultMaxPosterBytes = 2 << 20

type collectionService interface {
	Add(input models.MovieInput) models.Movie
	Delete(id string) bool
	ToggleWatched(id string) (models.Movie, bool)
	Edit(id string, update models.MovieUpdate) (models.Movie, bool)
	Get(id string) (models.Movie, bool)
	Movies(q collection.Query) iter.Seq[models.Movie]
	Stats() models.Stats
	WatchedGenres() []string
	WatchedByGenre(genre string) []models.Movie
}

var _ collectionService = (*collection.Service)(nil)

// membershipSweeper is the slice of the watchlist service the movie handler
// needs: cleaning up a deleted movie's memberships.
type membershipSweeper interface {
	RemoveMovie(movieID string)
}

type MoviesHandler struct {
	Service        collectionService
	Memberships    membershipSweeper
	MaxPosterBytes int
}

func NewMoviesHandler(service collectionService, memberships membershipSweeper, maxPosterBytes int) *MoviesHandler {
	if maxPosterBytes <= 0 {
		maxPosterBytes = DefaultMaxPosterBytes
	}
	return &MoviesHandler{
		Service:        service,
		Memberships:    memberships,
		MaxPosterBytes: maxPosterBytes,
	}
}

// List returns the filtered and sorted collection view.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := collection.Query{
		Search: params.Get("search"),
		Filter: params.Get("filter"),
		Sort:   params.Get("sort"),
		Genre:  params.Get("genre"),
	}

	switch query.Filter {
	case "", models.FilterAll, models.FilterWatched, models.FilterUnwatched, models.FilterTopRated:
	default:
		http.Error(w, "unknown filter", http.StatusBadRequest)
		return
	}
	switch query.Sort {
	case "", models.SortDate, models.SortRating, models.SortTitle:
	default:
		http.Error(w, "unknown sort", http.StatusBadRequest)
		return
	}

	movies := make([]models.Movie, 0)
	for movie := range h.Service.Movies(query) {
		movies = append(movies, movie)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movies)
}

// Create validates the submitted fields and adds a movie. Validation lives
// here at the boundary; the collection service itself does not validate.
func (h *MoviesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	if !h.validateInput(w, input.Title, input.Genre, input.Rating, input.PosterURL) {
		return
	}

	movie := h.Service.Add(input)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// Get returns a single movie by id.
func (h *MoviesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	movie, found := h.Service.Get(id)
	if !found {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// Update applies a partial edit to a movie.
func (h *MoviesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	var update models.MovieUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}
		update.Title = &trimmed
	}
	if update.Genre != nil && !models.ValidGenre(*update.Genre) {
		http.Error(w, "unknown genre", http.StatusBadRequest)
		return
	}
	if update.Rating != nil && (*update.Rating < 1 || *update.Rating > 10) {
		http.Error(w, "rating must be between 1 and 10", http.StatusBadRequest)
		return
	}
	if update.PosterURL != nil && len(*update.PosterURL) > h.MaxPosterBytes {
		http.Error(w, "poster image too large", http.StatusRequestEntityTooLarge)
		return
	}

	movie, found := h.Service.Edit(id, update)
	if !found {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// Delete removes a movie and sweeps its watchlist memberships.
func (h *MoviesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if !h.Service.Delete(id) {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}
	if h.Memberships != nil {
		h.Memberships.RemoveMovie(id)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleWatched flips the watched flag on a movie.
func (h *MoviesHandler) ToggleWatched(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	movie, found := h.Service.ToggleWatched(id)
	if !found {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// Stats returns total/watched/unwatched counts.
func (h *MoviesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Stats())
}

// Genres returns the closed genre set clients may pick from.
func (h *MoviesHandler) Genres(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.Genres)
}

// WatchedGenres returns the genres represented among watched movies.
func (h *MoviesHandler) WatchedGenres(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.WatchedGenres())
}

// WatchedByGenre returns the watched movies in one genre.
func (h *MoviesHandler) WatchedByGenre(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	genre := strings.TrimSpace(vars["genre"])
	if genre == "" {
		http.Error(w, "genre is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.WatchedByGenre(genre))
}

func (h *MoviesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *MoviesHandler) validateInput(w http.ResponseWriter, title, genre string, rating int, posterURL string) bool {
	if title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return false
	}
	if !models.ValidGenre(genre) {
		http.Error(w, "unknown genre", http.StatusBadRequest)
		return false
	}
	if rating < 1 || rating > 10 {
		http.Error(w, "rating must be between 1 and 10", http.StatusBadRequest)
		return false
	}
	if len(posterURL) > h.MaxPosterBytes {
		http.Error(w, "poster image too large", http.StatusRequestEntityTooLarge)
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

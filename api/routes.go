package api

import (
	"net/http"

	"flicksvault/handlers"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(r *mux.Router, moviesHandler *handlers.MoviesHandler, watchlistsHandler *handlers.WatchlistsHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Collection
	api.HandleFunc("/movies", moviesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies", moviesHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/movies", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{id}", moviesHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}", moviesHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/movies/{id}", moviesHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{id}/watched", moviesHandler.ToggleWatched).Methods(http.MethodPost)
	api.HandleFunc("/movies/{id}/watched", handleOptions).Methods(http.MethodOptions)

	// Aggregates
	api.HandleFunc("/stats", moviesHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/stats", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres", moviesHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/genres", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres/watched", moviesHandler.WatchedGenres).Methods(http.MethodGet)
	api.HandleFunc("/genres/watched", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres/{genre}/watched", moviesHandler.WatchedByGenre).Methods(http.MethodGet)
	api.HandleFunc("/genres/{genre}/watched", handleOptions).Methods(http.MethodOptions)

	// Watchlists
	api.HandleFunc("/watchlists", watchlistsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/watchlists", watchlistsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/watchlists", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/watchlists/{id}", watchlistsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/watchlists/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/watchlists/{id}/movies", watchlistsHandler.Members).Methods(http.MethodGet)
	api.HandleFunc("/watchlists/{id}/movies", handleOptions).Methods(http.MethodOptions)

	// Membership mapping
	api.HandleFunc("/movies/{id}/watchlists", watchlistsHandler.MovieMemberships).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}/watchlists", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{id}/watchlists/{watchlistID}", watchlistsHandler.AddMembership).Methods(http.MethodPut)
	api.HandleFunc("/movies/{id}/watchlists/{watchlistID}", watchlistsHandler.RemoveMembership).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{id}/watchlists/{watchlistID}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{id}/watchlists/{watchlistID}/toggle", watchlistsHandler.Toggle).Methods(http.MethodPost)
	api.HandleFunc("/movies/{id}/watchlists/{watchlistID}/toggle", handleOptions).Methods(http.MethodOptions)
}

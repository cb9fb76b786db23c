package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flicksvault/handlers"
	"flicksvault/models"

	"github.com/gorilla/mux"
)

func postWatchlist(t *testing.T, h *handlers.WatchlistsHandler, name string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"name": name})
	req := httptest.NewRequest(http.MethodPost, "/api/watchlists", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestWatchlistCreateAndList(t *testing.T) {
	_, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	rec := postWatchlist(t, h, "Date Night")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var created models.Watchlist
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.ID == "" || created.Name != "Date Night" {
		t.Fatalf("unexpected watchlist: %+v", created)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/watchlists", nil)
	recList := httptest.NewRecorder()
	h.List(recList, reqList)

	var lists []models.Watchlist
	if err := json.Unmarshal(recList.Body.Bytes(), &lists); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(lists) != 4 {
		t.Fatalf("expected defaults plus the new watchlist, got %d", len(lists))
	}
}

func TestWatchlistCreateRejectsDuplicateName(t *testing.T) {
	_, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	// "favorites" collides with the seeded "Favorites" ignoring case.
	rec := postWatchlist(t, h, "favorites")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	rec = postWatchlist(t, h, "   ")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty name, got %d", rec.Code)
	}
}

func TestWatchlistDelete(t *testing.T) {
	_, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	req := httptest.NewRequest(http.MethodDelete, "/api/watchlists/favorites", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "favorites"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/watchlists/favorites", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "favorites"})
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for repeated delete, got %d", rec.Code)
	}
}

func TestToggleMembershipRoundTrip(t *testing.T) {
	collectionSvc, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	movie := collectionSvc.Add(models.MovieInput{Title: "Dune", Genre: "Sci-Fi", Rating: 9})

	toggle := func() map[string]bool {
		req := httptest.NewRequest(http.MethodPost, "/api/movies/"+movie.ID+"/watchlists/favorites/toggle", nil)
		req = mux.SetURLVars(req, map[string]string{"id": movie.ID, "watchlistID": "favorites"})
		rec := httptest.NewRecorder()
		h.Toggle(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var body map[string]bool
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode toggle response: %v", err)
		}
		return body
	}

	if body := toggle(); !body["inWatchlist"] {
		t.Fatal("expected first toggle to add the movie")
	}
	if body := toggle(); body["inWatchlist"] {
		t.Fatal("expected second toggle to remove the movie")
	}
	if got := watchlistSvc.MembershipsOf(movie.ID); len(got) != 0 {
		t.Fatalf("expected mapping restored after double toggle, got %v", got)
	}
}

func TestToggleUnknownWatchlistReturns404(t *testing.T) {
	_, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/movies/m1/watchlists/no-such-list/toggle", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "m1", "watchlistID": "no-such-list"})
	rec := httptest.NewRecorder()
	h.Toggle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestMembersEndpoint(t *testing.T) {
	_, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	if err := watchlistSvc.AddMembership("m1", "classics"); err != nil {
		t.Fatalf("add membership returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/watchlists/classics/movies", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "classics"})
	rec := httptest.NewRecorder()
	h.Members(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var members []string
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("failed to decode members response: %v", err)
	}
	if len(members) != 1 || members[0] != "m1" {
		t.Fatalf("unexpected members: %v", members)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/watchlists/no-such-list/movies", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "no-such-list"})
	rec = httptest.NewRecorder()
	h.Members(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown watchlist, got %d", rec.Code)
	}
}

func TestMovieMembershipsEndpoint(t *testing.T) {
	collectionSvc, watchlistSvc := newServices(t)
	h := handlers.NewWatchlistsHandler(watchlistSvc)

	movie := collectionSvc.Add(models.MovieInput{Title: "Dune", Genre: "Sci-Fi", Rating: 9})
	if err := watchlistSvc.AddMembership(movie.ID, "favorites"); err != nil {
		t.Fatalf("add membership returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/movies/"+movie.ID+"/watchlists", nil)
	req = mux.SetURLVars(req, map[string]string{"id": movie.ID})
	rec := httptest.NewRecorder()
	h.MovieMemberships(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var ids []string
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("failed to decode memberships response: %v", err)
	}
	if len(ids) != 1 || ids[0] != "favorites" {
		t.Fatalf("unexpected memberships: %v", ids)
	}
}

package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/config"
)

const v3Key = "0123456789abcdef0123456789abcdef"

func newTestClient(server *httptest.Server, key string) *Client {
	cfg := config.TMDBConfig{
		APIKey:       key,
		BaseURL:      server.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Language:     "fr-FR",
		Timeout:      5,
	}
	return NewClient(cfg, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestIsV3Key(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{v3Key, true},
		{"short", false},
		{"eyJhbGciOiJIUzI1NiJ9.eyJhdWQiOiIxMjMifQ.signature", false},
		{"0123456789abcdef0123456789abcde-", false},
	}
	for _, tt := range tests {
		if got := isV3Key(tt.key); got != tt.want {
			t.Errorf("isV3Key(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestClient_SearchMovies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "Matrix" || q.Get("api_key") != v3Key || q.Get("language") != "fr-FR" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("v3 key must not be sent as bearer token")
		}

		results := make([]MovieResult, 12)
		for i := range results {
			results[i] = MovieResult{ID: 600 + i, Title: "The Matrix", ReleaseDate: "1999-03-30", PosterPath: strPtr("/p.jpg")}
		}
		json.NewEncoder(w).Encode(SearchMoviesResponse{Results: results})
	}))
	defer server.Close()

	client := newTestClient(server, v3Key)
	results, err := client.SearchMovies(context.Background(), "Matrix", 0)
	if err != nil {
		t.Fatalf("SearchMovies() error = %v", err)
	}
	if len(results) != 10 {
		t.Errorf("len(results) = %d, want 10", len(results))
	}
	if results[0].Year != "1999" || results[0].MediaType != "movie" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[0].PosterURL != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Errorf("PosterURL = %q", results[0].PosterURL)
	}
}

func TestClient_BearerToken(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiJ9.token"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("api_key") != "" {
			t.Error("bearer token must not be sent as api_key")
		}
		json.NewEncoder(w).Encode(SearchTVResponse{Results: []TVResult{{ID: 1, Name: "Dark", FirstAirDate: "2017-12-01"}}})
	}))
	defer server.Close()

	results, err := newTestClient(server, token).SearchTV(context.Background(), "Dark", 2017)
	if err != nil {
		t.Fatalf("SearchTV() error = %v", err)
	}
	if len(results) != 1 || results[0].Title != "Dark" || results[0].MediaType != "tv" || results[0].Year != "2017" {
		t.Errorf("results = %+v", results)
	}
}

func TestClient_SearchMulti(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchMultiResponse{Results: []MultiResult{
			{MediaType: "movie", ID: 1, Title: "Dune", ReleaseDate: "2021-09-15"},
			{MediaType: "person", ID: 2, Name: "Someone"},
			{MediaType: "tv", ID: 3, Name: "Dune: Prophecy", FirstAirDate: "2024-11-17"},
		}})
	}))
	defer server.Close()

	results, err := newTestClient(server, v3Key).SearchMulti(context.Background(), "Dune")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].MediaType != "movie" || results[1].Title != "Dune: Prophecy" {
		t.Errorf("results = %+v", results)
	}
}

func TestClient_GetMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(MovieDetails{
			MovieResult: MovieResult{ID: 603, Title: "Matrix", ReleaseDate: "1999-03-30", VoteAverage: 8.217, BackdropPath: strPtr("/b.jpg")},
			Genres:      []Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science-Fiction"}},
			Runtime:     136,
		})
	}))
	defer server.Close()

	title, err := newTestClient(server, v3Key).GetMovie(context.Background(), 603)
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if title.VoteAverage != 8.2 {
		t.Errorf("VoteAverage = %v, want 8.2", title.VoteAverage)
	}
	if len(title.Genres) != 2 || title.Genres[1] != "Science-Fiction" {
		t.Errorf("Genres = %v", title.Genres)
	}
	if title.BackdropURL != "https://image.tmdb.org/t/p/original/b.jpg" {
		t.Errorf("BackdropURL = %q", title.BackdropURL)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrAPIError},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrAPIError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"status_code": 7, "status_message": "nope"}`))
		}))
		_, err := newTestClient(server, v3Key).GetTV(context.Background(), 1)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		server.Close()
	}
}

func TestClient_NoKey(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())
	if client.IsConfigured() {
		t.Error("IsConfigured() = true without key")
	}
	if _, err := client.SearchMovies(context.Background(), "x", 0); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("err = %v, want ErrAPIKeyMissing", err)
	}
	client.SetAPIKey(v3Key)
	if !client.IsConfigured() {
		t.Error("IsConfigured() = false after SetAPIKey")
	}
}

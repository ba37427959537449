package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butinmaker/butinmaker/internal/metadata/tmdb"
)

type fakeTMDB struct {
	key      string
	searches int
	movies   []tmdb.Title
	details  map[int]*tmdb.Title
}

func (f *fakeTMDB) IsConfigured() bool   { return f.key != "" }
func (f *fakeTMDB) SetAPIKey(key string) { f.key = key }

func (f *fakeTMDB) SearchMovies(ctx context.Context, query string, year int) ([]tmdb.Title, error) {
	f.searches++
	return f.movies, nil
}

func (f *fakeTMDB) SearchTV(ctx context.Context, query string, year int) ([]tmdb.Title, error) {
	f.searches++
	return nil, nil
}

func (f *fakeTMDB) SearchMulti(ctx context.Context, query string) ([]tmdb.Title, error) {
	f.searches++
	return f.movies, nil
}

func (f *fakeTMDB) GetMovie(ctx context.Context, id int) (*tmdb.Title, error) {
	if t, ok := f.details[id]; ok {
		return t, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeTMDB) GetTV(ctx context.Context, id int) (*tmdb.Title, error) {
	return f.GetMovie(ctx, id)
}

func newTestService(client *fakeTMDB) *Service {
	return NewServiceWithClient(client, zerolog.Nop())
}

func TestService_SearchCachesResults(t *testing.T) {
	client := &fakeTMDB{key: "k", movies: []tmdb.Title{{ID: 27205, Title: "Inception", MediaType: "movie", Year: "2010"}}}
	svc := newTestService(client)

	first, err := svc.Search(context.Background(), "Inception", SearchMovie, 0)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "  inception ", SearchMovie, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, client.searches)
	assert.Equal(t, first, second)
	assert.Equal(t, "movie", first[0].Type)
}

func TestService_SearchErrors(t *testing.T) {
	svc := newTestService(&fakeTMDB{})
	_, err := svc.Search(context.Background(), "x", "", 0)
	assert.ErrorIs(t, err, ErrNoProvidersConfigured)

	svc = newTestService(&fakeTMDB{key: "k"})
	_, err = svc.Search(context.Background(), "x", "person", 0)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestService_GetJoinsGenres(t *testing.T) {
	client := &fakeTMDB{key: "k", details: map[int]*tmdb.Title{
		603: {ID: 603, Title: "Matrix", MediaType: "movie", Genres: []string{"Action", "Science-Fiction"}},
	}}
	svc := newTestService(client)

	got, err := svc.Get(context.Background(), TypeMovie, 603)
	require.NoError(t, err)
	assert.Equal(t, "Action, Science-Fiction", got.Genres)

	_, err = svc.Get(context.Background(), TypeMovie, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_SetAPIKeyClearsCache(t *testing.T) {
	client := &fakeTMDB{key: "old"}
	svc := newTestService(client)

	_, err := svc.Search(context.Background(), "a", SearchMulti, 0)
	require.NoError(t, err)
	svc.SetAPIKey("new")
	_, err = svc.Search(context.Background(), "a", SearchMulti, 0)
	require.NoError(t, err)

	assert.Equal(t, "new", client.key)
	assert.Equal(t, 2, client.searches)
}

func TestHandlers_Get(t *testing.T) {
	client := &fakeTMDB{key: "k", details: map[int]*tmdb.Title{
		1399: {ID: 1399, Title: "Game of Thrones", MediaType: "tv"},
	}}
	h := NewHandlers(newTestService(client))
	e := echo.New()

	tests := []struct {
		name   string
		kind   string
		id     string
		status int
	}{
		{"found", "tv", "1399", http.StatusOK},
		{"bad id", "tv", "abc", http.StatusBadRequest},
		{"bad type", "person", "1", http.StatusBadRequest},
		{"missing", "movie", "2", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("type", "id")
			c.SetParamValues(tt.kind, tt.id)

			err := h.Get(c)
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Contains(t, rec.Body.String(), "Game of Thrones")
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
		})
	}
}

func TestHandlers_SearchRequiresQuery(t *testing.T) {
	h := NewHandlers(newTestService(&fakeTMDB{key: "k"}))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var he *echo.HTTPError
	require.ErrorAs(t, h.Search(c), &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

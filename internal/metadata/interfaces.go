package metadata

import (
	"context"

	"github.com/butinmaker/butinmaker/internal/metadata/tmdb"
)

// TMDBClient defines the interface for TMDB API operations.
type TMDBClient interface {
	IsConfigured() bool
	SetAPIKey(key string)
	SearchMovies(ctx context.Context, query string, year int) ([]tmdb.Title, error)
	SearchTV(ctx context.Context, query string, year int) ([]tmdb.Title, error)
	SearchMulti(ctx context.Context, query string) ([]tmdb.Title, error)
	GetMovie(ctx context.Context, id int) (*tmdb.Title, error)
	GetTV(ctx context.Context, id int) (*tmdb.Title, error)
}

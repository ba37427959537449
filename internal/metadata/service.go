package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/metadata/tmdb"
)

var (
	ErrNoProvidersConfigured = errors.New("TMDB API key is not configured")
	ErrNotFound              = errors.New("metadata not found")
	ErrInvalidType           = errors.New("type must be movie, tv or multi")
)

// Search scopes.
const (
	SearchMovie = "movie"
	SearchTV    = "tv"
	SearchMulti = "multi"
)

// Service looks up titles on TMDB with an in-memory cache in front.
type Service struct {
	tmdb   TMDBClient
	cache  *Cache
	logger zerolog.Logger
}

// NewService creates a new metadata service with a real TMDB client.
func NewService(cfg config.TMDBConfig, logger zerolog.Logger) *Service {
	return NewServiceWithClient(tmdb.NewClient(cfg, logger), logger)
}

// NewServiceWithClient creates a new metadata service with a custom client.
func NewServiceWithClient(client TMDBClient, logger zerolog.Logger) *Service {
	return &Service{
		tmdb:   client,
		cache:  NewCache(DefaultCacheConfig()),
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// IsConfigured returns true if TMDB can be queried.
func (s *Service) IsConfigured() bool {
	return s.tmdb.IsConfigured()
}

// SetAPIKey switches the TMDB key and drops results cached under the old one.
func (s *Service) SetAPIKey(key string) {
	s.tmdb.SetAPIKey(key)
	s.cache.Clear()
}

// ClearCache clears the metadata cache.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("Metadata cache cleared")
}

// Search searches TMDB. scope is movie, tv or multi; an empty scope means
// multi. year filters movie and tv searches when > 0.
func (s *Service) Search(ctx context.Context, query, scope string, year int) ([]TitleMetadata, error) {
	if !s.IsConfigured() {
		return nil, ErrNoProvidersConfigured
	}
	if scope == "" {
		scope = SearchMulti
	}

	query = strings.TrimSpace(query)
	cacheKey := fmt.Sprintf("search:%s:%s:%d", scope, strings.ToLower(query), year)
	if results, ok := s.cache.GetTitles(cacheKey); ok {
		s.logger.Debug().Str("query", query).Str("scope", scope).Msg("Search cache hit")
		return results, nil
	}

	var (
		found []tmdb.Title
		err   error
	)
	switch scope {
	case SearchMovie:
		found, err = s.tmdb.SearchMovies(ctx, query, year)
	case SearchTV:
		found, err = s.tmdb.SearchTV(ctx, query, year)
	case SearchMulti:
		found, err = s.tmdb.SearchMulti(ctx, query)
	default:
		return nil, ErrInvalidType
	}
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Str("scope", scope).Msg("TMDB search failed")
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]TitleMetadata, len(found))
	for i := range found {
		results[i] = fromTMDB(found[i])
	}
	s.cache.Set(cacheKey, results)

	s.logger.Info().
		Str("query", query).
		Str("scope", scope).
		Int("results", len(results)).
		Msg("Search completed")

	return results, nil
}

// Get returns the details of a movie or series by TMDB id.
func (s *Service) Get(ctx context.Context, kind string, id int) (*TitleMetadata, error) {
	if !s.IsConfigured() {
		return nil, ErrNoProvidersConfigured
	}

	cacheKey := fmt.Sprintf("%s:%d", kind, id)
	if result, ok := s.cache.GetTitle(cacheKey); ok {
		s.logger.Debug().Str("type", kind).Int("tmdbId", id).Msg("Details cache hit")
		return result, nil
	}

	var (
		found *tmdb.Title
		err   error
	)
	switch kind {
	case TypeMovie:
		found, err = s.tmdb.GetMovie(ctx, id)
	case TypeTV:
		found, err = s.tmdb.GetTV(ctx, id)
	default:
		return nil, ErrInvalidType
	}
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("type", kind).Int("tmdbId", id).Msg("TMDB details failed")
		return nil, fmt.Errorf("get %s failed: %w", kind, err)
	}

	result := fromTMDB(*found)
	s.cache.Set(cacheKey, &result)

	s.logger.Info().Str("type", kind).Int("tmdbId", id).Str("title", result.Title).Msg("Got title details")
	return &result, nil
}

// Package tmdb is a client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("title not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

const (
	maxSearchResults = 10
	maxMultiResults  = 15
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
	mu         sync.RWMutex
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	if cfg.Language == "" {
		cfg.Language = "fr-FR"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// SetAPIKey replaces the key used for subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.APIKey = key
}

func (c *Client) apiKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIKey
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey() != ""
}

// isV3Key reports whether key is a 32-character v3 API key. Anything else
// is treated as a v4 read access token sent as a bearer token.
func isV3Key(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SearchMovies searches for movies by query with optional year filter.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]Title, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var response SearchMoviesResponse
	if err := c.doRequest(ctx, "/search/movie", params, &response); err != nil {
		return nil, err
	}

	results := make([]Title, 0, maxSearchResults)
	for i, m := range response.Results {
		if i == maxSearchResults {
			break
		}
		results = append(results, c.movieToTitle(m))
	}

	c.logger.Debug().Str("query", query).Int("year", year).Int("results", len(results)).Msg("Movie search completed")
	return results, nil
}

// SearchTV searches for series by query with optional first-air year.
func (c *Client) SearchTV(ctx context.Context, query string, year int) ([]Title, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var response SearchTVResponse
	if err := c.doRequest(ctx, "/search/tv", params, &response); err != nil {
		return nil, err
	}

	results := make([]Title, 0, maxSearchResults)
	for i, tv := range response.Results {
		if i == maxSearchResults {
			break
		}
		results = append(results, c.tvToTitle(tv))
	}

	c.logger.Debug().Str("query", query).Int("year", year).Int("results", len(results)).Msg("TV search completed")
	return results, nil
}

// SearchMulti searches movies and series together, dropping people.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]Title, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var response SearchMultiResponse
	if err := c.doRequest(ctx, "/search/multi", params, &response); err != nil {
		return nil, err
	}

	var results []Title
	for i, r := range response.Results {
		if i == maxMultiResults {
			break
		}
		switch r.MediaType {
		case "movie":
			results = append(results, c.movieToTitle(MovieResult{
				ID: r.ID, Title: r.Title, OriginalTitle: r.OriginalTitle, Overview: r.Overview,
				ReleaseDate: r.ReleaseDate, PosterPath: r.PosterPath, BackdropPath: r.BackdropPath,
				VoteAverage: r.VoteAverage,
			}))
		case "tv":
			results = append(results, c.tvToTitle(TVResult{
				ID: r.ID, Name: r.Name, OriginalName: r.OriginalName, Overview: r.Overview,
				FirstAirDate: r.FirstAirDate, PosterPath: r.PosterPath, BackdropPath: r.BackdropPath,
				VoteAverage: r.VoteAverage,
			}))
		}
	}
	return results, nil
}

// GetMovie returns movie details.
func (c *Client) GetMovie(ctx context.Context, id int) (*Title, error) {
	var details MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}

	title := c.movieToTitle(details.MovieResult)
	title.Genres = genreNames(details.Genres)
	title.VoteAverage = round1(details.VoteAverage)
	title.Runtime = details.Runtime
	title.Tagline = details.Tagline
	title.ImdbID = details.ImdbID
	if details.BackdropPath != nil {
		title.BackdropURL = c.GetImageURL(*details.BackdropPath, "original")
	}
	return &title, nil
}

// GetTV returns series details.
func (c *Client) GetTV(ctx context.Context, id int) (*Title, error) {
	var details TVDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), nil, &details); err != nil {
		return nil, err
	}

	title := c.tvToTitle(details.TVResult)
	title.Genres = genreNames(details.Genres)
	title.VoteAverage = round1(details.VoteAverage)
	title.Status = details.Status
	title.NumberOfSeasons = details.NumberOfSeasons
	title.NumberOfEpisodes = details.NumberOfEpisodes
	if details.BackdropPath != nil {
		title.BackdropURL = c.GetImageURL(*details.BackdropPath, "original")
	}
	return &title, nil
}

// GetImageURL builds a full image URL for a TMDB image path.
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	key := c.apiKey()
	if key == "" {
		return ErrAPIKeyMissing
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("language", c.config.Language)
	if isV3Key(key) {
		params.Set("api_key", key)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if !isV3Key(key) {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) movieToTitle(m MovieResult) Title {
	t := Title{
		ID:            m.ID,
		MediaType:     "movie",
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Year:          yearOf(m.ReleaseDate),
		ReleaseDate:   m.ReleaseDate,
		Overview:      m.Overview,
		VoteAverage:   m.VoteAverage,
	}
	if m.PosterPath != nil {
		t.PosterURL = c.GetImageURL(*m.PosterPath, "w500")
	}
	return t
}

func (c *Client) tvToTitle(tv TVResult) Title {
	t := Title{
		ID:            tv.ID,
		MediaType:     "tv",
		Title:         tv.Name,
		OriginalTitle: tv.OriginalName,
		Year:          yearOf(tv.FirstAirDate),
		ReleaseDate:   tv.FirstAirDate,
		Overview:      tv.Overview,
		VoteAverage:   tv.VoteAverage,
	}
	if tv.PosterPath != nil {
		t.PosterURL = c.GetImageURL(*tv.PosterPath, "w500")
	}
	return t
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func genreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Package tracker is a client for the La Cale external API: taxonomy
// metadata and torrent upload.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
)

// DefaultBaseURL is the public La Cale site.
const DefaultBaseURL = "https://la-cale.space"

const defaultRequestsPerMin = 30

var (
	ErrAPIKeyMissing   = errors.New("tracker API key is not configured")
	ErrTorrentNotFound = errors.New("torrent file not found")
	ErrTimeout         = errors.New("tracker request timed out")
)

// Client talks to the tracker. All requests share one rate limiter so the
// service stays under the tracker's per-key quota.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	mu      sync.RWMutex
	baseURL string
	apiKey  string
}

// NewClient creates a tracker client.
func NewClient(cfg config.TrackerConfig, logger zerolog.Logger) *Client {
	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = defaultRequestsPerMin
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1),
		logger:     logger.With().Str("component", "tracker").Logger(),
		apiKey:     cfg.APIKey,
	}
	c.SetBaseURL(cfg.BaseURL)
	return c
}

// SetAPIKey replaces the key sent in X-Api-Key.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = strings.TrimSpace(key)
}

// SetBaseURL replaces the tracker root. Empty restores DefaultBaseURL.
func (c *Client) SetBaseURL(u string) {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		u = DefaultBaseURL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = u
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) endpoint(path string) (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL + path, c.apiKey
}

// FetchMeta returns the tracker's categories and tags.
func (c *Client) FetchMeta(ctx context.Context) (*taxonomy.Taxonomy, error) {
	url, key := c.endpoint("/api/external/meta")
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", key)
	req.Header.Set("Accept", "application/json")

	var meta taxonomy.Taxonomy
	if err := c.do(req, &meta); err != nil {
		return nil, fmt.Errorf("fetch meta: %w", err)
	}

	c.logger.Info().
		Int("categories", len(meta.Categories)).
		Int("tagGroups", len(meta.TagGroups)).
		Msg("Fetched tracker metadata")
	return &meta, nil
}

// UploadRequest describes a torrent upload. TorrentPath must point to an
// existing .torrent file; NFOPath is attached only when the file exists.
type UploadRequest struct {
	Title       string
	CategoryID  string
	TorrentPath string
	TagIDs      []string
	Description string
	TMDBID      string
	TMDBType    string // MOVIE or TV
	CoverURL    string
	NFOPath     string
}

// UploadResult is the tracker's answer to a successful upload.
type UploadResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Link    string `json:"link"`
}

// Upload posts a torrent with its metadata as multipart form data.
func (c *Client) Upload(ctx context.Context, r UploadRequest) (*UploadResult, error) {
	url, key := c.endpoint("/api/external/upload")
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	torrent, err := os.ReadFile(r.TorrentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTorrentNotFound, r.TorrentPath)
	}

	body, contentType, err := buildUploadForm(r, torrent)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", key)
	req.Header.Set("Content-Type", contentType)

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	c.logger.Info().Str("title", r.Title).Str("id", result.ID).Msg("Uploaded torrent")
	return &result, nil
}

func buildUploadForm(r UploadRequest, torrent []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("title", r.Title); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("categoryId", r.CategoryID); err != nil {
		return nil, "", err
	}
	optional := [][2]string{
		{"description", r.Description},
		{"tmdbId", r.TMDBID},
		{"tmdbType", r.TMDBType},
		{"coverUrl", r.CoverURL},
	}
	for _, f := range optional {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, id := range r.TagIDs {
		if err := mw.WriteField("tags", id); err != nil {
			return nil, "", err
		}
	}

	if err := writeFile(mw, "file", filepath.Base(r.TorrentPath), "application/x-bittorrent", torrent); err != nil {
		return nil, "", err
	}

	if r.NFOPath != "" {
		if nfo, err := os.ReadFile(r.NFOPath); err == nil {
			if err := writeFile(mw, "nfoFile", filepath.Base(r.NFOPath), "text/plain", nfo); err != nil {
				return nil, "", err
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, field, name, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// do waits for the limiter, sends req and decodes a 200 JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var timeout interface{ Timeout() bool }
		if errors.As(err, &timeout) && timeout.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Error is a non-200 tracker response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tracker returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("tracker returned status %d: %s", e.StatusCode, e.Message)
}

// newError reads the tracker's message from a JSON {"message"} or
// {"error"} body, falling back to the raw text.
func newError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

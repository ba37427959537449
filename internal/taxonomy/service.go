package taxonomy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrCategoryNotFound is returned when no category matches a content type.
var ErrCategoryNotFound = errors.New("category not found")

// fetchRetryAfter is how long a failed fetch keeps Remote on the fallback
// before the tracker is asked again. Refresh ignores it.
const fetchRetryAfter = time.Minute

// MetaFetcher retrieves the remote taxonomy.
type MetaFetcher interface {
	FetchMeta(ctx context.Context) (*Taxonomy, error)
}

// Service serves resolved tag groups, backed by the sqlite cache and the
// tracker's /meta endpoint.
type Service struct {
	fetcher MetaFetcher
	store   *Store
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	failedAt time.Time
}

// NewService creates a taxonomy service. store may be nil to disable caching.
func NewService(fetcher MetaFetcher, store *Store, logger zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		logger:  logger.With().Str("component", "taxonomy").Logger(),
		now:     time.Now,
	}
}

// Remote returns the remote taxonomy from cache or the tracker. It returns
// nil when neither is available; callers resolve against the fallback.
func (s *Service) Remote(ctx context.Context) *Taxonomy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		tax, fetchedAt, ok, err := s.store.Load(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Taxonomy cache unreadable")
		} else if ok {
			s.logger.Debug().Time("fetchedAt", fetchedAt).Msg("Taxonomy cache hit")
			return tax
		}
	}

	if !s.failedAt.IsZero() && s.now().Sub(s.failedAt) < fetchRetryAfter {
		return nil
	}

	tax, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Dur("retryAfter", fetchRetryAfter).Msg("Remote taxonomy unavailable, using fallback")
		return nil
	}
	return tax
}

// Refresh fetches the remote taxonomy and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.fetch(ctx)
	return err
}

func (s *Service) fetch(ctx context.Context) (*Taxonomy, error) {
	if s.fetcher == nil {
		return nil, errors.New("no taxonomy source configured")
	}
	tax, err := s.fetcher.FetchMeta(ctx)
	if err != nil {
		s.failedAt = s.now()
		return nil, err
	}
	s.failedAt = time.Time{}
	if s.store != nil {
		if err := s.store.Save(ctx, tax); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache taxonomy")
		}
	}
	s.logger.Info().
		Int("groups", len(tax.TagGroups)).
		Int("ungrouped", len(tax.UngroupedTags)).
		Msg("Fetched remote taxonomy")
	return tax, nil
}

// Groups returns the resolved tag groups for contentType. It never fails.
func (s *Service) Groups(ctx context.Context, contentType ContentType) []TagGroup {
	return Resolve(s.Remote(ctx), contentType)
}

// CategoryID returns the upload category for contentType, preferring the
// remote category tree over the fallback one.
func (s *Service) CategoryID(ctx context.Context, contentType ContentType) (string, error) {
	if id, ok := FindCategoryID(s.Remote(ctx), contentType); ok {
		return id, nil
	}
	if id, ok := FindCategoryID(Fallback(), contentType); ok {
		return id, nil
	}
	return "", ErrCategoryNotFound
}

// EvictStale drops expired cache rows.
func (s *Service) EvictStale(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	n, err := s.store.Evict(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info().Int64("rows", n).Msg("Evicted stale taxonomy cache")
	}
	return nil
}

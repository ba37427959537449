package taxonomy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// CacheKey is the fixed key the remote taxonomy is cached under.
	CacheKey = "lacale-meta"

	// Retention is how long a cached taxonomy stays valid.
	Retention = 24 * time.Hour
)

// Store persists the last remote taxonomy in the taxonomy_cache table.
type Store struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

// NewStore creates a cache store on db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, retention: Retention, now: time.Now}
}

// Load returns the cached taxonomy and its fetch time. Entries older than
// the retention window are deleted and reported as absent.
func (s *Store) Load(ctx context.Context) (*Taxonomy, time.Time, bool, error) {
	var payload string
	var fetchedUnix int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM taxonomy_cache WHERE cache_key = ?`, CacheKey,
	).Scan(&payload, &fetchedUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read taxonomy cache: %w", err)
	}

	fetchedAt := time.Unix(fetchedUnix, 0)
	if s.now().Sub(fetchedAt) > s.retention {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM taxonomy_cache WHERE cache_key = ?`, CacheKey); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("failed to evict taxonomy cache: %w", err)
		}
		return nil, time.Time{}, false, nil
	}

	var tax Taxonomy
	if err := json.Unmarshal([]byte(payload), &tax); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to decode cached taxonomy: %w", err)
	}
	return &tax, fetchedAt, true, nil
}

// Save stores tax as the current cached taxonomy.
func (s *Store) Save(ctx context.Context, tax *Taxonomy) error {
	payload, err := json.Marshal(tax)
	if err != nil {
		return fmt.Errorf("failed to encode taxonomy: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO taxonomy_cache (cache_key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		CacheKey, string(payload), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write taxonomy cache: %w", err)
	}
	return nil
}

// Evict removes every cache row older than the retention window and
// returns the number of rows deleted.
func (s *Store) Evict(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM taxonomy_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict taxonomy cache: %w", err)
	}
	return res.RowsAffected()
}

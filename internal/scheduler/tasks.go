package scheduler

import (
	"context"
	"time"
)

// Task ids.
const (
	TaxonomyEvictTaskID   = "taxonomy-evict"
	TaxonomyRefreshTaskID = "taxonomy-refresh"
	SessionPruneTaskID    = "session-prune"
)

// SessionIdleLimit is how long an untouched session is kept.
const SessionIdleLimit = 24 * time.Hour

// TaxonomyCache is the part of the taxonomy service the tasks drive.
type TaxonomyCache interface {
	EvictStale(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// SessionPruner drops idle sessions.
type SessionPruner interface {
	PruneIdle(maxIdle time.Duration) int
}

// RegisterDefaultTasks registers the cache and session maintenance tasks.
func RegisterDefaultTasks(s *Scheduler, taxonomy TaxonomyCache, sessions SessionPruner) error {
	tasks := []Task{
		{
			ID:          TaxonomyEvictTaskID,
			Name:        "Taxonomy cache eviction",
			Description: "Deletes cached tracker metadata older than 24 hours",
			Cron:        "0 * * * *",
			Timeout:     time.Minute,
			Func:        taxonomy.EvictStale,
		},
		{
			ID:          TaxonomyRefreshTaskID,
			Name:        "Taxonomy refresh",
			Description: "Fetches the tracker's categories and tags",
			Cron:        "15 */6 * * *",
			Timeout:     2 * time.Minute,
			Func:        taxonomy.Refresh,
		},
		{
			ID:          SessionPruneTaskID,
			Name:        "Session cleanup",
			Description: "Forgets release sessions idle for a day",
			Cron:        "*/30 * * * *",
			Func: func(context.Context) error {
				sessions.PruneIdle(SessionIdleLimit)
				return nil
			},
		},
	}

	for _, t := range tasks {
		if err := s.Register(t); err != nil {
			return err
		}
	}
	return nil
}

package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaxonomy struct {
	evicted, refreshed atomic.Int32
}

func (f *fakeTaxonomy) EvictStale(context.Context) error {
	f.evicted.Add(1)
	return nil
}

func (f *fakeTaxonomy) Refresh(context.Context) error {
	f.refreshed.Add(1)
	return errors.New("tracker unreachable")
}

type fakePruner struct {
	calls atomic.Int32
	limit atomic.Int64
}

func (f *fakePruner) PruneIdle(maxIdle time.Duration) int {
	f.calls.Add(1)
	f.limit.Store(int64(maxIdle))
	return 0
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRegisterDefaultTasks(t *testing.T) {
	s := newTestScheduler(t)
	tax := &fakeTaxonomy{}
	pruner := &fakePruner{}
	require.NoError(t, RegisterDefaultTasks(s, tax, pruner))

	tasks := s.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, SessionPruneTaskID, tasks[0].ID)
	assert.Equal(t, TaxonomyEvictTaskID, tasks[1].ID)
	assert.Equal(t, TaxonomyRefreshTaskID, tasks[2].ID)

	assert.ErrorIs(t, RegisterDefaultTasks(s, tax, pruner), ErrTaskRegistered)
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(t)
	tax := &fakeTaxonomy{}
	pruner := &fakePruner{}
	require.NoError(t, RegisterDefaultTasks(s, tax, pruner))
	s.Start()

	require.NoError(t, s.RunNow(TaxonomyEvictTaskID))
	require.NoError(t, s.RunNow(SessionPruneTaskID))
	require.NoError(t, s.RunNow(TaxonomyRefreshTaskID))

	assert.Eventually(t, func() bool {
		return tax.evicted.Load() == 1 && pruner.calls.Load() == 1 && tax.refreshed.Load() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(SessionIdleLimit), pruner.limit.Load())

	assert.Eventually(t, func() bool {
		info, err := s.Task(TaxonomyRefreshTaskID)
		return err == nil && info.LastRun != nil && info.LastError == "tracker unreachable"
	}, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, s.RunNow("missing"), ErrTaskNotFound)
	_, err := s.Task("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRegister_InvalidCron(t *testing.T) {
	s := newTestScheduler(t)
	err := s.Register(Task{ID: "bad", Cron: "not cron", Func: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestHandlers(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, RegisterDefaultTasks(s, &fakeTaxonomy{}, &fakePruner{}))
	e := echo.New()
	NewHandlers(s).RegisterRoutes(e.Group("/api/v1/tasks"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), TaxonomyEvictTaskID)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks/missing/run", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+SessionPruneTaskID+"/run", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

// Package scheduler runs the service's periodic maintenance tasks on gocron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskRunning    = errors.New("task is already running")
	ErrTaskRegistered = errors.New("task already registered")
)

// TaskFunc is the body of a scheduled task.
type TaskFunc func(ctx context.Context) error

// Task describes a periodic job.
type Task struct {
	ID          string
	Name        string
	Description string
	Cron        string // five-field cron expression
	Timeout     time.Duration
	RunOnStart  bool
	Func        TaskFunc
}

// TaskInfo is the API view of a task.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cron        string     `json:"cron"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	Running     bool       `json:"running"`
}

type entry struct {
	task    Task
	job     gocron.Job
	lastRun *time.Time
	lastErr error
	running bool
}

// Scheduler owns a gocron scheduler and the state of its tasks.
type Scheduler struct {
	cron   gocron.Scheduler
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]*entry
}

// New creates a stopped scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		cron:   cron,
		logger: logger.With().Str("component", "scheduler").Logger(),
		tasks:  make(map[string]*entry),
	}, nil
}

// Register adds a task. Overlapping runs of the same task are skipped.
func (s *Scheduler) Register(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTaskRegistered, t.ID)
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(t.Cron, false),
		gocron.NewTask(func() { s.run(t.ID) }),
		gocron.WithName(t.Name),
		gocron.WithTags(t.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", t.ID, err)
	}

	s.tasks[t.ID] = &entry{task: t, job: job}
	s.logger.Info().Str("id", t.ID).Str("cron", t.Cron).Msg("Registered task")
	return nil
}

func (s *Scheduler) run(id string) {
	s.mu.Lock()
	e, ok := s.tasks[id]
	if !ok || e.running {
		s.mu.Unlock()
		return
	}
	e.running = true
	s.mu.Unlock()

	ctx := context.Background()
	if e.task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.task.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := e.task.Func(ctx)

	s.mu.Lock()
	e.running = false
	e.lastRun = &start
	e.lastErr = err
	s.mu.Unlock()

	log := s.logger.With().Str("id", id).Dur("duration", time.Since(start)).Logger()
	if err != nil {
		log.Error().Err(err).Msg("Task failed")
		return
	}
	log.Debug().Msg("Task completed")
}

// Start begins scheduling and launches RunOnStart tasks.
func (s *Scheduler) Start() {
	s.cron.Start()

	s.mu.RLock()
	var ids []string
	for id, e := range s.tasks {
		if e.task.RunOnStart {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		go s.run(id)
	}
	s.logger.Info().Int("tasks", len(s.tasks)).Msg("Scheduler started")
}

// Stop waits for running jobs and shuts down.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// RunNow starts a task outside its schedule.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	e, ok := s.tasks[id]
	running := ok && e.running
	s.mu.RUnlock()

	switch {
	case !ok:
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	case running:
		return fmt.Errorf("%w: %s", ErrTaskRunning, id)
	}
	go s.run(id)
	return nil
}

// Tasks lists the registered tasks sorted by id.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskInfo, 0, len(s.tasks))
	for _, e := range s.tasks {
		out = append(out, e.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Task returns one task.
func (s *Scheduler) Task(id string) (TaskInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tasks[id]
	if !ok {
		return TaskInfo{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return e.info(), nil
}

func (e *entry) info() TaskInfo {
	info := TaskInfo{
		ID:          e.task.ID,
		Name:        e.task.Name,
		Description: e.task.Description,
		Cron:        e.task.Cron,
		LastRun:     e.lastRun,
		Running:     e.running,
	}
	if e.lastErr != nil {
		info.LastError = e.lastErr.Error()
	}
	if next, err := e.job.NextRun(); err == nil && !next.IsZero() {
		info.NextRun = &next
	}
	return info
}

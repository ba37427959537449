// Package health reports whether the service's dependencies are usable.
package health

import (
	"context"
	"sort"
	"sync"
)

// Status of a check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Result is the outcome of one check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report aggregates all checks. Status is the worst individual status.
type Report struct {
	Status Status   `json:"status"`
	Checks []Result `json:"checks"`
}

// CheckFunc runs one check.
type CheckFunc func(ctx context.Context) Result

// Service holds the registered checks.
type Service struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewService creates a service with no checks.
func NewService() *Service {
	return &Service{checks: make(map[string]CheckFunc)}
}

// Register adds or replaces the check called name.
func (s *Service) Register(name string, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = fn
}

// Report runs every check.
func (s *Service) Report(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(names)

	report := Report{Status: StatusOK, Checks: make([]Result, 0, len(names))}
	for _, name := range names {
		r := checks[name](ctx)
		r.Name = name
		report.Checks = append(report.Checks, r)
		if rank(r.Status) > rank(report.Status) {
			report.Status = r.Status
		}
	}
	return report
}

func rank(s Status) int {
	switch s {
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Configured turns a boolean probe into a check that warns with msg when
// the probe is false.
func Configured(ok func() bool, msg string) CheckFunc {
	return func(context.Context) Result {
		if ok() {
			return Result{Status: StatusOK}
		}
		return Result{Status: StatusWarning, Message: msg}
	}
}

// Folder checks that dir() is writable. An unusable folder only blocks
// the steps that write there, so it is a warning.
func Folder(dir func() string) CheckFunc {
	return func(context.Context) Result {
		if err := CheckFolderWritable(dir()); err != nil {
			return Result{Status: StatusWarning, Message: err.Error()}
		}
		return Result{Status: StatusOK}
	}
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database checks that the database answers.
func Database(db Pinger) CheckFunc {
	return func(ctx context.Context) Result {
		if err := db.PingContext(ctx); err != nil {
			return Result{Status: StatusError, Message: err.Error()}
		}
		return Result{Status: StatusOK}
	}
}

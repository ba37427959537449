package logger

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

const defaultRecentSize = 500

// Entry is a decoded log line.
type Entry struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Recent keeps the last log entries in memory. It is an io.Writer fed
// with zerolog's JSON output.
type Recent struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewRecent creates a tail holding up to size entries.
func NewRecent(size int) *Recent {
	if size <= 0 {
		size = defaultRecentSize
	}
	return &Recent{entries: make([]Entry, size)}
}

// Write decodes one JSON log line. Lines that are not JSON are dropped.
func (r *Recent) Write(p []byte) (int, error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return len(p), nil
	}

	e := Entry{Fields: map[string]any{}}
	for k, v := range raw {
		s, _ := v.(string)
		switch k {
		case "time":
			e.Time = s
		case "level":
			e.Level = s
		case "component":
			e.Component = s
		case "message":
			e.Message = s
		default:
			e.Fields[k] = v
		}
	}
	if len(e.Fields) == 0 {
		e.Fields = nil
	}

	r.mu.Lock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
	return len(p), nil
}

// Entries returns the kept entries, oldest first.
func (r *Recent) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		return append([]Entry(nil), r.entries[:r.next]...)
	}
	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}

// RegisterRoutes exposes the tail.
func (r *Recent) RegisterRoutes(g *echo.Group) {
	g.GET("", r.handleList)
}

// GET /api/v1/logs
func (r *Recent) handleList(c echo.Context) error {
	return c.JSON(http.StatusOK, r.Entries())
}

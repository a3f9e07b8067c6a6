package neterr

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// Reporter receives errors at the point they are detected.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// Logger is the structured logger used by LogReporter and the sources.
// *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Report hands err to r exactly once. Errors of type *Error that were
// already reported are skipped, so a failure detected by a store and
// propagated through a router is not reported twice. Discarding through
// NopReporter does not count as reporting.
func Report(ctx context.Context, r Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	if _, ok := r.(NopReporter); ok {
		return
	}
	var ne *Error
	if errors.As(err, &ne) {
		if !ne.reported.CompareAndSwap(false, true) {
			return
		}
	}
	r.Report(ctx, err)
}

// NopReporter discards every report.
type NopReporter struct{}

func (NopReporter) Report(context.Context, error) {}

// Record is a single stored report.
type Record struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind,omitempty"`
	Parameter string        `json:"parameter,omitempty"`
	Message   string        `json:"message"`
	Location  *CodeLocation `json:"location,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newRecord(id string, err error) Record {
	rec := Record{ID: id, Message: err.Error(), CreatedAt: time.Now().UTC()}
	var ne *Error
	if errors.As(err, &ne) {
		loc := ne.Location
		rec.Kind = ne.Kind
		rec.Parameter = ne.Parameter
		rec.Location = &loc
	}
	return rec
}

// MemReporter keeps the most recent reports in memory.
type MemReporter struct {
	mu      sync.RWMutex
	limit   int
	records []Record
	seq     int
}

// NewMemReporter returns a reporter retaining up to limit reports; limit <= 0
// keeps everything.
func NewMemReporter(limit int) *MemReporter {
	return &MemReporter{limit: limit}
}

func (m *MemReporter) Report(_ context.Context, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.records = append(m.records, newRecord(strconv.Itoa(m.seq), err))
	if m.limit > 0 && len(m.records) > m.limit {
		m.records = append([]Record(nil), m.records[len(m.records)-m.limit:]...)
	}
}

// Records returns a copy of the retained reports, oldest first.
func (m *MemReporter) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Record(nil), m.records...)
}

// Len returns the number of retained reports.
func (m *MemReporter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// LogReporter writes reports to a structured logger.
type LogReporter struct {
	Logger Logger
}

func (l LogReporter) Report(_ context.Context, err error) {
	if l.Logger == nil {
		return
	}
	args := []any{"error", err}
	var ne *Error
	if errors.As(err, &ne) {
		args = append(args, "kind", string(ne.Kind), "location", ne.Location.String())
	}
	l.Logger.Error("network error", args...)
}

// MultiReporter fans a report out to every reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, err error) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, err)
		}
	}
}

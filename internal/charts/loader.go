package charts

import (
	"context"
	"errors"
	"sync"
)

// Status is the data loading state of an analytics view.
type Status int

// Loading states. Ready and Failed hold until the next Load.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by Load when the loader was closed before the fetch completed.
var ErrClosed = errors.New("charts: loader closed")

// AggregateSource fetches the aggregate summary from the remote API.
type AggregateSource interface {
	FetchAggregates(ctx context.Context) (Aggregates, error)
}

// View is a consistent snapshot of a Loader.
type View struct {
	Status       Status
	Message      string
	ProductTypes []Point
	KAM          []Point
	Focused      int
}

// Loader owns the analytics view state: the fetch status, the derived chart points
// and the focused pie segment. Overlapping loads are not coordinated; whichever
// completes last is kept. Completions that arrive after Close are dropped.
type Loader struct {
	source AggregateSource

	mu       sync.Mutex
	status   Status
	message  string
	products []Point
	kam      []Point
	focused  int
	closed   bool
}

// NewLoader returns an idle loader reading from source.
func NewLoader(source AggregateSource) *Loader {
	return &Loader{source: source}
}

// Load fetches the aggregates and moves the loader to ready or failed. Prior chart
// data is discarded on failure.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.status = StatusLoading
	l.message = ""
	l.mu.Unlock()

	aggregates, err := l.source.FetchAggregates(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if err != nil {
		l.status = StatusFailed
		l.message = err.Error()
		l.products = nil
		l.kam = nil
		return err
	}
	l.status = StatusReady
	l.products = ToChartPoints(aggregates.ProductTypes)
	l.kam = ToChartPoints(aggregates.KAM)
	return nil
}

// SetFocusedSegment records the highlighted pie segment.
func (l *Loader) SetFocusedSegment(index int) {
	if index < 0 {
		index = 0
	}
	l.mu.Lock()
	l.focused = index
	l.mu.Unlock()
}

// Close tears the loader down. Subsequent completions leave its state untouched.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// Status returns the current loading state.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Snapshot returns the current state. The focused index is clamped to the KAM points.
func (l *Loader) Snapshot() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	focused := l.focused
	if focused >= len(l.kam) {
		focused = 0
	}
	return View{
		Status:       l.status,
		Message:      l.message,
		ProductTypes: l.products,
		KAM:          l.kam,
		Focused:      focused,
	}
}

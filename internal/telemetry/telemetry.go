package telemetry

import "sync"

// Level is the severity of a breadcrumb.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Breadcrumb is a lightweight structured record of something that happened
// while serving a request.
type Breadcrumb struct {
	Category string
	Message  string
	Level    Level
	Data     map[string]any
}

// Collector receives breadcrumbs and exception reports. Implementations are
// best-effort: they must not block the caller and must swallow their own
// failures.
type Collector interface {
	RecordBreadcrumb(b Breadcrumb)
	RecordException(err error, tags map[string]string, contexts map[string]any)
}

// Noop is a Collector that discards everything.
type Noop struct{}

func (Noop) RecordBreadcrumb(Breadcrumb) {}

func (Noop) RecordException(error, map[string]string, map[string]any) {}

// Multi fans records out to every collector in order.
type Multi []Collector

func (m Multi) RecordBreadcrumb(b Breadcrumb) {
	for _, c := range m {
		c.RecordBreadcrumb(b)
	}
}

func (m Multi) RecordException(err error, tags map[string]string, contexts map[string]any) {
	for _, c := range m {
		c.RecordException(err, tags, contexts)
	}
}

// CapturedException is one exception report held by a Recorder.
type CapturedException struct {
	Err      error
	Tags     map[string]string
	Contexts map[string]any
}

// Recorder is an in-memory Collector for tests.
type Recorder struct {
	mu          sync.Mutex
	breadcrumbs []Breadcrumb
	exceptions  []CapturedException
}

func (r *Recorder) RecordBreadcrumb(b Breadcrumb) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breadcrumbs = append(r.breadcrumbs, b)
}

func (r *Recorder) RecordException(err error, tags map[string]string, contexts map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exceptions = append(r.exceptions, CapturedException{Err: err, Tags: tags, Contexts: contexts})
}

// Breadcrumbs returns a copy of the recorded breadcrumbs.
func (r *Recorder) Breadcrumbs() []Breadcrumb {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Breadcrumb, len(r.breadcrumbs))
	copy(out, r.breadcrumbs)
	return out
}

// Exceptions returns a copy of the recorded exception reports.
func (r *Recorder) Exceptions() []CapturedException {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CapturedException, len(r.exceptions))
	copy(out, r.exceptions)
	return out
}

var (
	_ Collector = Noop{}
	_ Collector = Multi{}
	_ Collector = (*Recorder)(nil)
)

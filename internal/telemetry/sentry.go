package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Sentry forwards records to the process-wide Sentry hub. sentry.Init must
// have been called before the first record.
type Sentry struct {
	hub *sentry.Hub
}

// NewSentry returns a collector bound to the current Sentry hub.
func NewSentry() *Sentry {
	return &Sentry{hub: sentry.CurrentHub()}
}

func (s *Sentry) RecordBreadcrumb(b Breadcrumb) {
	s.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  b.Category,
		Message:   b.Message,
		Level:     sentryLevel(b.Level),
		Data:      b.Data,
		Timestamp: time.Now(),
	}, nil)
}

func (s *Sentry) RecordException(err error, tags map[string]string, contexts map[string]any) {
	s.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		for k, v := range contexts {
			if m, ok := v.(map[string]any); ok {
				scope.SetContext(k, sentry.Context(m))
			} else {
				scope.SetContext(k, sentry.Context{"value": v})
			}
		}
		s.hub.CaptureException(err)
	})
}

func sentryLevel(l Level) sentry.Level {
	switch l {
	case LevelWarning:
		return sentry.LevelWarning
	case LevelError:
		return sentry.LevelError
	default:
		return sentry.LevelInfo
	}
}

var _ Collector = (*Sentry)(nil)

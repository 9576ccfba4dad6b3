package telemetry

import "github.com/sirupsen/logrus"

// Log writes records to the process log.
type Log struct{}

// NewLog returns a log-backed collector.
func NewLog() Log { return Log{} }

func (Log) RecordBreadcrumb(b Breadcrumb) {
	fields := logrus.Fields{"category": b.Category}
	for k, v := range b.Data {
		fields[k] = v
	}
	entry := logrus.WithFields(fields)
	switch b.Level {
	case LevelWarning:
		entry.Warn(b.Message)
	case LevelError:
		entry.Error(b.Message)
	default:
		entry.Info(b.Message)
	}
}

func (Log) RecordException(err error, tags map[string]string, contexts map[string]any) {
	fields := logrus.Fields{}
	for k, v := range tags {
		fields[k] = v
	}
	for k, v := range contexts {
		fields[k] = v
	}
	logrus.WithFields(fields).WithError(err).Error("exception")
}

var _ Collector = Log{}

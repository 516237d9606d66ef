package reactive

import (
	"io"
	"log/slog"
)

// errorLog collects every error a runtime reports.
type errorLog struct {
	errs []error
}

func (l *errorLog) add(err error) { l.errs = append(l.errs, err) }

func (l *errorLog) count() int { return len(l.errs) }

func newTestRuntime(opts ...Option) (*Runtime, *errorLog) {
	log := &errorLog{}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithErrorHandler(log.add),
	}
	return NewRuntime(append(base, opts...)...), log
}

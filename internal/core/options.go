// Options for configuring Stack instances.
package core

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/comalice/exceptx/internal/primitives"
)

// WithLogger configures the Stack with its own logger instead of Logger().
func WithLogger(l *zap.Logger) Option {
	return func(s *Stack) {
		s.logger = l
	}
}

// WithPublisher configures the Stack with an EventPublisher for lifecycle events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Stack) {
		s.publisher = p
	}
}

// WithPublishContext sets the context passed to the publisher.
func WithPublishContext(ctx context.Context) Option {
	return func(s *Stack) {
		s.pubCtx = ctx
	}
}

// WithKinds configures the kind table used for diagnostics and event names.
func WithKinds(t *primitives.KindTable) Option {
	return func(s *Stack) {
		s.kinds = t
	}
}

// WithDiagnostics sets the stream fatal diagnostics are written to.
// Default: os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(s *Stack) {
		s.diag = w
	}
}

// WithExit sets the hook called with AbortExitCode when a fatal exception fires
// with no boundary armed. Default: os.Exit.
func WithExit(exit func(code int)) Option {
	return func(s *Stack) {
		s.exit = exit
	}
}

// WithTraceID overrides the generated trace id.
func WithTraceID(id string) Option {
	return func(s *Stack) {
		s.traceID = id
	}
}

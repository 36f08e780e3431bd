// Package testutil builds stacks wired for assertions: every lifecycle event is
// recorded, fatal diagnostics are captured, and process exit is replaced by a
// recorded exit code.
package testutil

import (
	"bytes"

	"github.com/comalice/exceptx/internal/core"
	"github.com/comalice/exceptx/internal/primitives"
	"github.com/comalice/exceptx/internal/production"
)

// Harness bundles a Stack with what it emitted.
type Harness struct {
	Stack    *core.Stack
	Recorder *production.Recorder
	Diag     *bytes.Buffer
	// ExitCodes holds every code passed to the exit hook.
	ExitCodes []int
}

// NewHarness creates a recording stack. opts are applied after the harness's
// own options and may override them.
func NewHarness(kinds *primitives.KindTable, opts ...core.Option) *Harness {
	h := &Harness{
		Recorder: production.NewRecorder(kinds),
		Diag:     &bytes.Buffer{},
	}
	base := []core.Option{
		core.WithKinds(kinds),
		core.WithPublisher(h.Recorder),
		core.WithDiagnostics(h.Diag),
		core.WithExit(func(code int) { h.ExitCodes = append(h.ExitCodes, code) }),
	}
	h.Stack = core.NewStack(append(base, opts...)...)
	return h
}

// Trace returns the events recorded so far.
func (h *Harness) Trace() primitives.Trace {
	return h.Recorder.Trace()
}

// Types returns the recorded event types in order.
func (h *Harness) Types() []primitives.EventType {
	return h.Recorder.Trace().Types()
}

// Count returns how many events of typ were recorded.
func (h *Harness) Count(typ primitives.EventType) int {
	return len(h.Recorder.Trace().Filter(typ))
}

package production

import (
	"io"
	"testing"

	"github.com/comalice/exceptx/internal/core"
	"github.com/comalice/exceptx/internal/primitives"
)

const (
	kindDivByZero primitives.Kind = 1
	kindOther     primitives.Kind = 2
)

type otherException struct {
	Message string `json:"message" yaml:"message"`
}

var testKinds = primitives.MustKindTable(
	primitives.KindSpec{ID: kindDivByZero, Name: "div-by-zero"},
	primitives.KindSpec{ID: kindOther, Name: "other"},
)

// propagationTrace runs an inner region that does not catch "other" inside an
// outer one that does, and returns the recorded trace.
func propagationTrace(t *testing.T) primitives.Trace {
	t.Helper()
	rec := NewRecorder(testKinds)
	s := core.NewStack(
		core.WithKinds(testKinds),
		core.WithPublisher(rec),
		core.WithTraceID("propagation"),
		core.WithDiagnostics(io.Discard),
	)
	s.Try(func() {
		s.Try(func() {
			s.Raise(kindOther, otherException{Message: "custom exception"})
		}).Catch(kindDivByZero, nil).Finally(func() {}).End()
	}).Catch(kindOther, nil).Finally(func() {}).End()
	return rec.Trace()
}

// fatalTrace produces an unhandled exception recovered at a boundary.
func fatalTrace(t *testing.T) primitives.Trace {
	t.Helper()
	rec := NewRecorder(testKinds)
	s := core.NewStack(
		core.WithKinds(testKinds),
		core.WithPublisher(rec),
		core.WithTraceID("fatal"),
		core.WithDiagnostics(io.Discard),
	)
	_ = s.Recover(func() {
		s.Try(func() {
			s.Raise(kindOther, otherException{Message: "first exception"})
		}).End()
	})
	return rec.Trace()
}

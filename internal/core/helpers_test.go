package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/comalice/exceptx/internal/primitives"
)

const (
	kindDivByZero primitives.Kind = 1
	kindOther     primitives.Kind = 2
)

type divByZero struct {
	OperandA int
}

type otherException struct {
	Message string
}

var testKinds = primitives.MustKindTable(
	primitives.KindSpec{ID: kindDivByZero, Name: "div-by-zero"},
	primitives.KindSpec{ID: kindOther, Name: "other"},
)

type recorder struct {
	events []primitives.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e primitives.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []primitives.EventType {
	out := make([]primitives.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestStack(t *testing.T, opts ...Option) (*Stack, *recorder, *bytes.Buffer) {
	t.Helper()
	rec := &recorder{}
	diag := &bytes.Buffer{}
	base := []Option{
		WithKinds(testKinds),
		WithPublisher(rec),
		WithDiagnostics(diag),
		WithTraceID("test-trace"),
		WithExit(func(code int) {
			t.Errorf("unexpected process exit with code %d", code)
		}),
	}
	return NewStack(append(base, opts...)...), rec, diag
}

func divide(s *Stack, a, b int) int {
	if b == 0 {
		s.Raise(kindDivByZero, divByZero{OperandA: a})
	}
	return a / b
}

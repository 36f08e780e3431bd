// Package exceptx provides structured exception handling for Go code that wants
// a try/catch/finally discipline with typed, payload-carrying exceptions.
//
// A protected region is declared with Try, optionally followed by Catch clauses
// (one exception kind each) and a Finally block, and is run by End:
//
//	exceptx.Try(func() {
//		divide(654321, 0)
//	}).Catch(DivByZero, exceptx.Handle(func(p DivByZeroPayload) {
//		fmt.Println("div by zero, operand:", p.OperandA)
//	})).Finally(func() {
//		fmt.Println("finally")
//	}).End()
//
// Clauses are matched by exact kind equality in declaration order; the first
// match wins. Finally always runs once. An exception no clause matches moves on
// to the enclosing region after Finally.
//
// Raising with no enclosing region, or raising while an exception is already
// pending (typically inside a Finally block), is fatal: a diagnostic is written
// and the process exits with AbortExitCode unless a boundary armed with Recover
// intercepts it.
//
// The package-level functions operate on a process-wide default Stack and must
// only be used from one goroutine. Concurrent code creates one Stack per
// goroutine with NewStack.
package exceptx

import (
	"github.com/comalice/exceptx/internal/core"
	"github.com/comalice/exceptx/internal/primitives"
)

type (
	Kind           = primitives.Kind
	KindSpec       = primitives.KindSpec
	KindTable      = primitives.KindTable
	Exception      = primitives.Exception
	Event          = primitives.Event
	EventType      = primitives.EventType
	Phase          = primitives.Phase
	Trace          = primitives.Trace
	Stack          = core.Stack
	Context        = core.Context
	Region         = core.Region
	Handler        = core.Handler
	Option         = core.Option
	EventPublisher = core.EventPublisher
	FatalError     = core.FatalError
	FatalReason    = core.FatalReason
)

// None is the "no exception" kind.
const None = primitives.None

const (
	EventEnter     = primitives.EventEnter
	EventRaise     = primitives.EventRaise
	EventCatch     = primitives.EventCatch
	EventFinally   = primitives.EventFinally
	EventPropagate = primitives.EventPropagate
	EventExit      = primitives.EventExit
	EventFatal     = primitives.EventFatal
	EventRecover   = primitives.EventRecover
)

const (
	Unhandled       = core.Unhandled
	DoubleException = core.DoubleException
	AbortExitCode   = core.AbortExitCode
)

var (
	ErrUnhandled       = core.ErrUnhandled
	ErrDoubleException = core.ErrDoubleException
	ErrNoneKind        = core.ErrNoneKind
	ErrInvalidKind     = primitives.ErrInvalidKind
	ErrDuplicateKind   = primitives.ErrDuplicateKind
)

var (
	NewStack           = core.NewStack
	WithLogger         = core.WithLogger
	WithPublisher      = core.WithPublisher
	WithPublishContext = core.WithPublishContext
	WithKinds          = core.WithKinds
	WithDiagnostics    = core.WithDiagnostics
	WithExit           = core.WithExit
	WithTraceID        = core.WithTraceID
	SetLogger          = core.SetLogger

	NewKindTable   = primitives.NewKindTable
	MustKindTable  = primitives.MustKindTable
	ParseKindTable = primitives.ParseKindTable
	LoadKindTable  = primitives.LoadKindTable
)

// PayloadAs returns the payload of e as T.
func PayloadAs[T any](e Exception) (T, bool) {
	return primitives.PayloadAs[T](e)
}

// Handle adapts a typed function to a Handler. A payload that is not a T is
// passed as T's zero value.
func Handle[T any](fn func(T)) Handler {
	return func(exc Exception) {
		p, _ := primitives.PayloadAs[T](exc)
		fn(p)
	}
}

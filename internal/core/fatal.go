package core

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/comalice/exceptx/internal/primitives"
)

// AbortExitCode is the process exit status for a fatal exception with no
// recovery boundary armed (128 + SIGABRT).
const AbortExitCode = 134

var (
	ErrUnhandled       = errors.New("unhandled exception")
	ErrDoubleException = errors.New("double exception")
	ErrNoneKind        = errors.New("cannot raise kind none")
)

// FatalReason is the category of a fatal exception.
type FatalReason int

const (
	// Unhandled means no installed context could receive the exception.
	Unhandled FatalReason = iota + 1
	// DoubleException means an exception was raised while another one was
	// still pending at the same context.
	DoubleException
)

// String returns the string representation of the reason.
func (r FatalReason) String() string {
	switch r {
	case Unhandled:
		return "unhandled exception"
	case DoubleException:
		return "double exception"
	default:
		return "fatal exception"
	}
}

// FatalError reports a mechanism-level failure. It is never delivered to a
// catch clause; only Stack.Recover observes it.
type FatalError struct {
	Reason FatalReason
	// Exception is the offending exception: the unhandled one, or the second
	// one for a double exception.
	Exception primitives.Exception
	// Previous is the kind already pending for a double exception.
	Previous primitives.Kind

	message string
	stack   *Stack
}

// Kind returns the offending exception kind.
func (e *FatalError) Kind() primitives.Kind {
	return e.Exception.Kind
}

// Error returns the diagnostic line.
func (e *FatalError) Error() string {
	return e.message
}

// Unwrap exposes ErrUnhandled or ErrDoubleException for errors.Is.
func (e *FatalError) Unwrap() error {
	switch e.Reason {
	case Unhandled:
		return ErrUnhandled
	case DoubleException:
		return ErrDoubleException
	default:
		return nil
	}
}

func (s *Stack) newFatal(reason FatalReason, exc primitives.Exception, previous primitives.Kind) *FatalError {
	fe := &FatalError{
		Reason:    reason,
		Exception: exc,
		Previous:  previous,
		stack:     s,
	}
	switch reason {
	case DoubleException:
		fe.message = fmt.Sprintf("%s, previous kind: %s, current kind: %s",
			reason, s.kinds.Describe(previous), s.kinds.Describe(exc.Kind))
	default:
		fe.message = fmt.Sprintf("%s, kind: %s", reason, s.kinds.Describe(exc.Kind))
	}
	return fe
}

// fatal reports fe, raised at ctx (nil outside any region), and escalates past
// normal control flow: to the armed boundary if there is one, otherwise out of
// the process. It does not return.
func (s *Stack) fatal(ctx *Context, fe *FatalError) {
	if s.diag != nil {
		fmt.Fprintln(s.diag, fe.Error())
	}
	s.log().Error("fatal exception",
		zap.Stringer("reason", fe.Reason),
		zap.String("kind", s.kinds.Name(fe.Exception.Kind)),
		zap.String("previous", s.kinds.Name(fe.Previous)),
		zap.Bool("armed", s.checkpoint != nil))
	s.emit(primitives.EventFatal, ctx, fe.Exception, fe.Previous)
	if s.checkpoint == nil {
		s.exit(AbortExitCode)
	}
	// Reached when armed, or when the exit hook returns.
	panic(fe)
}

// checkpoint is an armed recovery boundary.
type checkpoint struct {
	current *Context
	prev    *checkpoint
}

// Armed reports whether a recovery boundary is active.
func (s *Stack) Armed() bool {
	return s.checkpoint != nil
}

// Recover arms a recovery boundary and runs body. If body triggers an
// unhandled or double exception, execution resumes here: the contexts installed
// under the boundary are discarded and the *FatalError is returned. The
// boundary disarms when body returns. Other panics are not intercepted.
func (s *Stack) Recover(body func()) (err error) {
	cp := &checkpoint{current: s.current, prev: s.checkpoint}
	s.checkpoint = cp
	defer func() {
		s.checkpoint = cp.prev
		r := recover()
		if r == nil {
			return
		}
		fe, ok := r.(*FatalError)
		if !ok || fe.stack != s {
			panic(r)
		}
		s.current = cp.current
		s.log().Info("recovered from fatal exception",
			zap.Stringer("reason", fe.Reason),
			zap.String("kind", s.kinds.Name(fe.Exception.Kind)))
		s.emit(primitives.EventRecover, s.current, fe.Exception, fe.Previous)
		err = fe
	}()
	if body != nil {
		body()
	}
	return nil
}

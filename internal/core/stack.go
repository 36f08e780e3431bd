// Package core provides the runtime tier of the exception engine.
// This includes the handler-context Stack, the try/catch/finally Region state
// machine, and fatal-abort recovery.
// Dependencies: internal/primitives
//
// A Stack is single-goroutine. Raise transfers control by panicking with a jump
// token addressed to one installed Context; only that context's region runner
// recovers it. Any other panic value passes through regions untouched.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/comalice/exceptx/internal/primitives"
)

// EventPublisher receives lifecycle events synchronously, in order.
type EventPublisher interface {
	Publish(ctx context.Context, event primitives.Event) error
	Close() error
}

// Context is one installed protected region.
type Context struct {
	id     uint64
	depth  int
	parent *Context
	exc    primitives.Exception
	phase  primitives.Phase
}

// ID returns the region id, unique within its Stack.
func (c *Context) ID() uint64 { return c.id }

// Depth returns the nesting depth; the outermost region has depth 0.
func (c *Context) Depth() int { return c.depth }

// Parent returns the enclosing context, or nil.
func (c *Context) Parent() *Context { return c.parent }

// Pending returns the exception pending at this context.
func (c *Context) Pending() primitives.Exception { return c.exc }

// Phase returns the region's protocol state.
func (c *Context) Phase() primitives.Phase { return c.phase }

// jump is the non-local transfer token.
type jump struct {
	target *Context
}

// Option applies configuration to Stack via functional options pattern.
type Option func(*Stack)

// Stack is the chain of installed handler contexts plus the fatal-abort
// checkpoint.
type Stack struct {
	current    *Context
	checkpoint *checkpoint
	nextID     uint64
	seq        uint64

	traceID   string
	kinds     *primitives.KindTable
	logger    *zap.Logger
	publisher EventPublisher
	pubCtx    context.Context
	diag      io.Writer
	exit      func(code int)
}

// NewStack creates an empty Stack.
func NewStack(opts ...Option) *Stack {
	s := &Stack{
		pubCtx: context.Background(),
		diag:   os.Stderr,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.traceID == "" {
		s.traceID = newTraceID()
	}
	return s
}

func newTraceID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("trace-%d", time.Now().UnixNano())
	}
	return id.String()
}

// TraceID identifies this stack in published events.
func (s *Stack) TraceID() string { return s.traceID }

// Kinds returns the kind table used for names, possibly nil.
func (s *Stack) Kinds() *primitives.KindTable { return s.kinds }

// Current returns the innermost installed context, or nil.
func (s *Stack) Current() *Context { return s.current }

// Depth returns the number of installed contexts.
func (s *Stack) Depth() int {
	if s.current == nil {
		return 0
	}
	return s.current.depth + 1
}

// Pending returns the exception pending at the current context, if any.
func (s *Stack) Pending() primitives.Exception {
	if s.current == nil {
		return primitives.Exception{}
	}
	return s.current.exc
}

// Raise stores an exception in the current context and transfers control to
// that context's decision point. It does not return. Raising with no installed
// context is an unhandled exception; raising while the current context already
// has a pending exception is a double exception. Both are fatal.
func (s *Stack) Raise(kind primitives.Kind, payload any) {
	if kind == primitives.None {
		panic(ErrNoneKind)
	}
	exc := primitives.Exception{Kind: kind, Payload: payload}
	ctx := s.current
	if ctx == nil {
		s.fatal(nil, s.newFatal(Unhandled, exc, primitives.None))
		return
	}
	if ctx.exc.Pending() {
		s.fatal(ctx, s.newFatal(DoubleException, exc, ctx.exc.Kind))
		return
	}
	ctx.exc = exc
	s.log().Debug("exception raised",
		zap.Uint64("region", ctx.id),
		zap.String("kind", s.kinds.Name(kind)))
	s.emit(primitives.EventRaise, ctx, exc, primitives.None)
	panic(&jump{target: ctx})
}

func (s *Stack) install() *Context {
	s.nextID++
	ctx := &Context{
		id:     s.nextID,
		parent: s.current,
		phase:  primitives.PhaseProtected,
	}
	if ctx.parent != nil {
		ctx.depth = ctx.parent.depth + 1
	}
	s.current = ctx
	s.log().Debug("region installed", zap.Uint64("region", ctx.id), zap.Int("depth", ctx.depth))
	s.emit(primitives.EventEnter, ctx, primitives.Exception{}, primitives.None)
	return ctx
}

// uninstall reinstalls the parent and forwards a still-pending exception to it.
func (s *Stack) uninstall(ctx *Context) {
	s.current = ctx.parent
	ctx.phase = primitives.PhaseDone
	exc := ctx.exc
	s.emit(primitives.EventExit, ctx, exc, primitives.None)
	if !exc.Pending() {
		return
	}

	parent := ctx.parent
	if parent == nil {
		s.fatal(ctx, s.newFatal(Unhandled, exc, primitives.None))
		return
	}
	if parent.exc.Pending() {
		s.fatal(ctx, s.newFatal(DoubleException, exc, parent.exc.Kind))
		return
	}
	parent.exc = exc
	s.log().Debug("exception propagated",
		zap.Uint64("from", ctx.id),
		zap.Uint64("to", parent.id),
		zap.String("kind", s.kinds.Name(exc.Kind)))
	s.emit(primitives.EventPropagate, ctx, exc, primitives.None)
	panic(&jump{target: parent})
}

// release pops ctx when a foreign panic or a fatal error unwinds through its
// region.
func (s *Stack) release(ctx *Context) {
	s.current = ctx.parent
	ctx.phase = primitives.PhaseDone
	s.log().Debug("region released by panic", zap.Uint64("region", ctx.id))
}

// guard runs fn and reports whether a jump addressed to ctx ended it.
func (s *Stack) guard(ctx *Context, fn func()) (raised bool) {
	if fn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			if j, ok := r.(*jump); ok && j.target == ctx {
				raised = true
				return
			}
			panic(r)
		}
	}()
	fn()
	return false
}

func (s *Stack) log() *zap.Logger {
	if s.logger != nil {
		return s.logger
	}
	if l := Logger(); l != nil {
		return l
	}
	return zap.NewNop()
}

func (s *Stack) emit(typ primitives.EventType, ctx *Context, exc primitives.Exception, previous primitives.Kind) {
	if s.publisher == nil {
		return
	}
	var region uint64
	if ctx != nil {
		region = ctx.id
	}
	s.seq++
	event := primitives.NewEvent(typ, region, exc)
	event.Seq = s.seq
	event.Trace = s.traceID
	event.Previous = previous
	if exc.Pending() {
		event.KindName = s.kinds.Name(exc.Kind)
	}
	if ctx != nil {
		event.Depth = ctx.depth
		event.Phase = ctx.phase
		if ctx.parent != nil {
			event.Parent = ctx.parent.id
		}
	}
	if err := s.publisher.Publish(s.pubCtx, event); err != nil {
		s.log().Warn("publish failed", zap.String("event", string(typ)), zap.Error(err))
	}
}

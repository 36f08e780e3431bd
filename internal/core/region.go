package core

import (
	"go.uber.org/zap"

	"github.com/comalice/exceptx/internal/primitives"
)

// Handler is a catch clause body. It receives the exception it consumed.
type Handler func(exc primitives.Exception)

type clause struct {
	kind    primitives.Kind
	handler Handler
}

// Region is a try/catch/finally construct. Build it with Try, Catch and Finally,
// then run it with End. A Region may be run more than once; each End installs a
// fresh context.
type Region struct {
	stack   *Stack
	body    func()
	clauses []clause
	finally func()
}

// Try starts a region guarding body.
func (s *Stack) Try(body func()) *Region {
	return &Region{stack: s, body: body}
}

// Catch adds a clause for kind. Clauses are tested in the order they are added
// and the first equal kind wins.
func (r *Region) Catch(kind primitives.Kind, handler Handler) *Region {
	r.clauses = append(r.clauses, clause{kind: kind, handler: handler})
	return r
}

// Finally sets the block that runs exactly once on every path out of the
// region. A later call replaces an earlier one.
func (r *Region) Finally(fn func()) *Region {
	r.finally = fn
	return r
}

// End runs the region to completion. It returns normally when no exception is
// left pending; otherwise the exception continues to the enclosing region, or
// becomes an unhandled exception when there is none.
func (r *Region) End() {
	s := r.stack
	ctx := s.install()
	exited := false
	defer func() {
		if !exited {
			s.release(ctx)
		}
	}()

	phase := primitives.PhaseProtected
	for phase != primitives.PhaseDone {
		ctx.phase = phase
		switch phase {
		case primitives.PhaseProtected:
			if s.guard(ctx, r.body) {
				phase = primitives.PhaseDispatch
			} else {
				phase = primitives.PhaseFinally
			}
		case primitives.PhaseDispatch:
			r.dispatch(ctx)
			phase = primitives.PhaseFinally
		case primitives.PhaseFinally:
			s.emit(primitives.EventFinally, ctx, ctx.exc, primitives.None)
			// A raise here with nothing pending becomes the pending exception;
			// with something pending, Raise treats it as a double exception.
			s.guard(ctx, r.finally)
			phase = primitives.PhaseDone
		}
	}

	exited = true
	s.uninstall(ctx)
}

// dispatch runs the first clause matching the pending kind. The kind is cleared
// before the handler runs, so a raise inside the handler is a fresh exception.
func (r *Region) dispatch(ctx *Context) {
	s := r.stack
	exc := ctx.exc
	for _, c := range r.clauses {
		if c.kind != exc.Kind {
			continue
		}
		ctx.exc = primitives.Exception{}
		s.log().Debug("exception caught",
			zap.Uint64("region", ctx.id),
			zap.String("kind", s.kinds.Name(exc.Kind)))
		s.emit(primitives.EventCatch, ctx, exc, primitives.None)
		if c.handler != nil {
			s.guard(ctx, func() { c.handler(exc) })
		}
		return
	}
	s.log().Debug("no clause matched",
		zap.Uint64("region", ctx.id),
		zap.String("kind", s.kinds.Name(exc.Kind)))
}

package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/comalice/exceptx"
	"github.com/comalice/exceptx/internal/production"
)

// DivByZero is the payload of the div-by-zero kind.
type DivByZero struct {
	OperandA int
}

// Other is the payload of the other kind.
type Other struct {
	Message string
}

var defaultKinds = exceptx.MustKindTable(
	exceptx.KindSpec{ID: 1, Name: "div-by-zero", Description: "integer division by zero"},
	exceptx.KindSpec{ID: 2, Name: "other", Description: "custom exception with a message"},
)

// kindSet resolves the two demo kinds from a table.
type kindSet struct {
	table     *exceptx.KindTable
	divByZero exceptx.Kind
	other     exceptx.Kind
}

func loadKinds(path string) (kindSet, error) {
	table := defaultKinds
	if path != "" {
		var err error
		table, err = exceptx.LoadKindTable(path)
		if err != nil {
			return kindSet{}, err
		}
	}
	ks := kindSet{table: table}
	var ok bool
	if ks.divByZero, ok = table.Lookup("div-by-zero"); !ok {
		return kindSet{}, fmt.Errorf("kind table: div-by-zero: %w", exceptx.ErrInvalidKind)
	}
	if ks.other, ok = table.Lookup("other"); !ok {
		return kindSet{}, fmt.Errorf("kind table: other: %w", exceptx.ErrInvalidKind)
	}
	return ks, nil
}

// demoCase is one demonstration. guarded cases run under a recovery boundary.
type demoCase struct {
	name    string
	title   string
	guarded bool
	body    func(e *env)
}

// env is what a case body sees.
type env struct {
	s     *exceptx.Stack
	kinds kindSet
	out   io.Writer
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

func (e *env) divide(a, b int) int {
	if b == 0 {
		e.s.Raise(e.kinds.divByZero, DivByZero{OperandA: a})
	}
	return a / b
}

var cases = []demoCase{
	{
		name:  "catch",
		title: "exception and catch and finally",
		body: func(e *env) {
			e.s.Try(func() {
				e.printf("try\n")
				e.printf("123456 / 5: %d\n", e.divide(123456, 5))
				e.printf("654321 / 0: %d\n", e.divide(654321, 0))
			}).Catch(e.kinds.divByZero, exceptx.Handle(func(p DivByZero) {
				e.printf("div by zero: operand_a: %d\n", p.OperandA)
			})).Finally(func() {
				e.printf("finally\n")
			}).End()
		},
	},
	{
		name:  "no-leak",
		title: "caught exception does not leak",
		body: func(e *env) {
			e.s.Try(func() {
				e.s.Try(func() {
					e.printf("654321 / 0: %d\n", e.divide(654321, 0))
				}).Catch(e.kinds.divByZero, exceptx.Handle(func(p DivByZero) {
					e.printf("catch 2: div by zero: operand_a: %d\n", p.OperandA)
				})).Finally(func() {
					e.printf("finally 2\n")
				}).End()
			}).Catch(e.kinds.divByZero, exceptx.Handle(func(p DivByZero) {
				e.printf("catch 1: div by zero: operand_a: %d\n", p.OperandA)
			})).Finally(func() {
				e.printf("finally 1\n")
			}).End()
		},
	},
	{
		name:  "propagate",
		title: "uncaught exception propagates to the enclosing region",
		body: func(e *env) {
			e.s.Try(func() {
				e.s.Try(func() {
					e.s.Raise(e.kinds.other, Other{Message: "custom exception"})
				}).Catch(e.kinds.divByZero, exceptx.Handle(func(p DivByZero) {
					e.printf("catch 2: div by zero: operand_a: %d\n", p.OperandA)
				})).Finally(func() {
					e.printf("finally 2\n")
				}).End()
			}).Catch(e.kinds.other, exceptx.Handle(func(p Other) {
				e.printf("catch 1: exception: %s\n", p.Message)
			})).Finally(func() {
				e.printf("finally 1\n")
			}).End()
		},
	},
	{
		name:    "unhandled",
		title:   "unhandled exception",
		guarded: true,
		body: func(e *env) {
			e.printf("654321 / 0: %d\n", e.divide(654321, 0))
		},
	},
	{
		name:    "short-circuit",
		title:   "short circuit of unhandled exception",
		guarded: true,
		body: func(e *env) {
			e.s.Try(func() {
				e.s.Raise(e.kinds.other, Other{Message: "custom exception"})
			}).Finally(func() {
				e.printf("finally\n")
			}).End()
		},
	},
	{
		name:    "double",
		title:   "double exception",
		guarded: true,
		body: func(e *env) {
			e.s.Try(func() {
				e.s.Try(func() {
					e.s.Raise(e.kinds.other, Other{Message: "first exception"})
				}).Finally(func() {
					e.s.Raise(e.kinds.other, Other{Message: "second exception"})
				}).End()
			}).Finally(func() {}).End()
		},
	},
}

func caseNames() []string {
	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.name
	}
	return names
}

func selectCases(name string) ([]demoCase, error) {
	if name == "" || name == "all" {
		return cases, nil
	}
	i := slices.IndexFunc(cases, func(c demoCase) bool { return c.name == name })
	if i < 0 {
		return nil, fmt.Errorf("unknown case %q", name)
	}
	return cases[i : i+1], nil
}

// demo runs cases on a fresh stack each, recording and optionally saving the
// trace.
type demo struct {
	kinds     kindSet
	logger    *zap.Logger
	out       io.Writer
	diag      io.Writer
	persister production.Persister
	dot       bool
}

func (d *demo) run(c demoCase) error {
	n := slices.IndexFunc(cases, func(x demoCase) bool { return x.name == c.name }) + 1
	fmt.Fprintln(d.out, header(fmt.Sprintf("========== case %d: %s", n, c.title)))

	recorder := production.NewRecorder(d.kinds.table)
	publisher := production.NewMultiPublisher(recorder, production.NewLoggingPublisher(d.logger))
	defer func() { _ = publisher.Close() }()

	s := exceptx.NewStack(
		exceptx.WithKinds(d.kinds.table),
		exceptx.WithLogger(d.logger),
		exceptx.WithPublisher(publisher),
		exceptx.WithDiagnostics(d.diag),
		exceptx.WithTraceID(c.name),
	)
	e := &env{s: s, kinds: d.kinds, out: d.out}

	if c.guarded {
		if err := s.Recover(func() { c.body(e) }); err != nil {
			fmt.Fprintln(d.out, green("recovered from abort"))
		}
	} else {
		c.body(e)
	}

	trace := recorder.Trace()
	if d.persister != nil {
		if err := d.persister.Save(context.Background(), trace); err != nil {
			return fmt.Errorf("save trace %s: %w", c.name, err)
		}
	}
	if d.dot {
		viz := &production.DefaultVisualizer{}
		fmt.Fprintln(d.out, viz.ExportDOT(trace))
	}
	return nil
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/exceptx/internal/primitives"
)

func TestRegion_NormalCompletion(t *testing.T) {
	s, _, diag := newTestStack(t)
	var quotient, caught, finally int

	s.Try(func() {
		quotient = divide(s, 123456, 5)
	}).Catch(kindDivByZero, func(primitives.Exception) {
		caught++
	}).Finally(func() {
		finally++
	}).End()

	assert.Equal(t, 24691, quotient)
	assert.Equal(t, 0, caught)
	assert.Equal(t, 1, finally)
	assert.Equal(t, 0, s.Depth())
	assert.Nil(t, s.Current())
	assert.Empty(t, diag.String())
}

func TestRegion_CatchAndFinally(t *testing.T) {
	s, _, _ := newTestStack(t)
	var got []string
	var operand int

	s.Try(func() {
		got = append(got, "try")
		divide(s, 654321, 0)
		got = append(got, "unreachable")
	}).Catch(kindDivByZero, func(exc primitives.Exception) {
		p, ok := primitives.PayloadAs[divByZero](exc)
		require.True(t, ok)
		operand = p.OperandA
		got = append(got, "catch")
	}).Finally(func() {
		got = append(got, "finally")
	}).End()
	got = append(got, "after")

	assert.Equal(t, []string{"try", "catch", "finally", "after"}, got)
	assert.Equal(t, 654321, operand)
	assert.False(t, s.Pending().Pending())
}

func TestRegion_CaughtExceptionDoesNotLeak(t *testing.T) {
	s, _, _ := newTestStack(t)
	var got []string

	s.Try(func() {
		s.Try(func() {
			divide(s, 123456, 0)
		}).Catch(kindDivByZero, func(primitives.Exception) {
			got = append(got, "catch 2")
		}).Finally(func() {
			got = append(got, "finally 2")
		}).End()
		assert.False(t, s.Pending().Pending(), "outer context must not see the consumed exception")
	}).Catch(kindDivByZero, func(primitives.Exception) {
		got = append(got, "catch 1")
	}).Finally(func() {
		got = append(got, "finally 1")
	}).End()

	// A sibling region at the same level starts clean.
	s.Try(func() {
		assert.False(t, s.Pending().Pending())
		got = append(got, "sibling")
	}).End()

	assert.Equal(t, []string{"catch 2", "finally 2", "finally 1", "sibling"}, got)
}

func TestRegion_UncaughtPropagatesToParent(t *testing.T) {
	s, _, _ := newTestStack(t)
	var got []string
	want := otherException{Message: "custom exception"}
	var received primitives.Exception

	s.Try(func() {
		s.Try(func() {
			s.Raise(kindOther, want)
		}).Catch(kindDivByZero, func(primitives.Exception) {
			got = append(got, "catch 2")
		}).Finally(func() {
			got = append(got, "finally 2")
		}).End()
		got = append(got, "unreachable")
	}).Catch(kindOther, func(exc primitives.Exception) {
		received = exc
		got = append(got, "catch 1")
	}).Finally(func() {
		got = append(got, "finally 1")
	}).End()

	assert.Equal(t, []string{"finally 2", "catch 1", "finally 1"}, got)
	assert.Equal(t, primitives.Exception{Kind: kindOther, Payload: want}, received)
	assert.Equal(t, 0, s.Depth())
}

func TestRegion_FirstMatchWins(t *testing.T) {
	s, _, _ := newTestStack(t)
	var got []string

	s.Try(func() {
		s.Raise(kindOther, nil)
	}).Catch(kindDivByZero, func(primitives.Exception) {
		got = append(got, "div")
	}).Catch(kindOther, func(primitives.Exception) {
		got = append(got, "first other")
	}).Catch(kindOther, func(primitives.Exception) {
		got = append(got, "second other")
	}).End()

	assert.Equal(t, []string{"first other"}, got)
}

func TestRegion_RaiseInHandlerIsFreshException(t *testing.T) {
	s, _, diag := newTestStack(t)
	var got []string

	s.Try(func() {
		s.Try(func() {
			divide(s, 1, 0)
		}).Catch(kindDivByZero, func(primitives.Exception) {
			got = append(got, "inner catch")
			s.Raise(kindOther, otherException{Message: "from handler"})
		}).Catch(kindOther, func(primitives.Exception) {
			got = append(got, "inner catch other")
		}).Finally(func() {
			got = append(got, "inner finally")
		}).End()
	}).Catch(kindOther, func(exc primitives.Exception) {
		p, _ := primitives.PayloadAs[otherException](exc)
		got = append(got, "outer catch: "+p.Message)
	}).End()

	assert.Equal(t, []string{"inner catch", "inner finally", "outer catch: from handler"}, got)
	assert.Empty(t, diag.String(), "a raise in a handler is not a double exception")
}

func TestRegion_RaiseInFinallyWithNothingPending(t *testing.T) {
	s, _, _ := newTestStack(t)
	var got []string

	s.Try(func() {
		s.Try(func() {
			got = append(got, "inner body")
		}).Finally(func() {
			got = append(got, "inner finally")
			s.Raise(kindOther, nil)
			got = append(got, "unreachable")
		}).End()
	}).Catch(kindOther, func(primitives.Exception) {
		got = append(got, "outer catch")
	}).End()

	assert.Equal(t, []string{"inner body", "inner finally", "outer catch"}, got)
}

func TestRegion_NestedRegionInsideHandler(t *testing.T) {
	s, _, _ := newTestStack(t)
	var depths []int

	s.Try(func() {
		s.Raise(kindOther, nil)
	}).Catch(kindOther, func(primitives.Exception) {
		depths = append(depths, s.Depth())
		s.Try(func() {
			depths = append(depths, s.Depth())
			divide(s, 7, 0)
		}).Catch(kindDivByZero, func(primitives.Exception) {
			depths = append(depths, s.Depth())
		}).End()
	}).End()

	assert.Equal(t, []int{1, 2, 2}, depths)
	assert.Equal(t, 0, s.Depth())
}

func TestRegion_ReusableAcrossRuns(t *testing.T) {
	s, _, _ := newTestStack(t)
	finally := 0
	caught := 0
	r := s.Try(func() {
		s.Raise(kindDivByZero, divByZero{OperandA: 1})
	}).Catch(kindDivByZero, func(primitives.Exception) {
		caught++
	}).Finally(func() {
		finally++
	})

	r.End()
	r.End()

	assert.Equal(t, 2, caught)
	assert.Equal(t, 2, finally)
}

func TestRegion_NilBodiesAreEmpty(t *testing.T) {
	s, _, _ := newTestStack(t)
	assert.NotPanics(t, func() {
		s.Try(nil).Catch(kindOther, nil).Finally(nil).End()
		s.Try(func() { s.Raise(kindOther, nil) }).Catch(kindOther, nil).End()
	})
	assert.Equal(t, 0, s.Depth())
}

func TestRegion_ForeignPanicPassesThrough(t *testing.T) {
	s, _, _ := newTestStack(t)
	caught := 0

	assert.PanicsWithValue(t, "boom", func() {
		s.Try(func() {
			s.Try(func() {
				panic("boom")
			}).Catch(kindOther, func(primitives.Exception) {
				caught++
			}).End()
		}).Catch(kindOther, func(primitives.Exception) {
			caught++
		}).End()
	})

	assert.Equal(t, 0, caught)
	assert.Nil(t, s.Current(), "contexts are released while a foreign panic unwinds")
}

func TestRegion_RaiseNoneKindPanics(t *testing.T) {
	s, _, _ := newTestStack(t)
	assert.PanicsWithValue(t, ErrNoneKind, func() {
		s.Raise(primitives.None, nil)
	})
}

func TestRegion_EventSequenceForPropagation(t *testing.T) {
	s, rec, _ := newTestStack(t)

	s.Try(func() {
		s.Try(func() {
			s.Raise(kindOther, otherException{Message: "custom exception"})
		}).Catch(kindDivByZero, nil).Finally(func() {}).End()
	}).Catch(kindOther, nil).Finally(func() {}).End()

	assert.Equal(t, []primitives.EventType{
		primitives.EventEnter,
		primitives.EventEnter,
		primitives.EventRaise,
		primitives.EventFinally,
		primitives.EventExit,
		primitives.EventPropagate,
		primitives.EventCatch,
		primitives.EventFinally,
		primitives.EventExit,
	}, rec.types())

	for i, e := range rec.events {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, "test-trace", e.Trace)
	}

	propagate := rec.events[5]
	assert.Equal(t, uint64(2), propagate.Region)
	assert.Equal(t, uint64(1), propagate.Parent)
	assert.Equal(t, 1, propagate.Depth)
	assert.Equal(t, "other", propagate.KindName)

	innerExit := rec.events[4]
	assert.Equal(t, kindOther, innerExit.Kind, "exit records the exception still pending")
	assert.Equal(t, primitives.PhaseDone, innerExit.Phase)

	catch := rec.events[6]
	assert.Equal(t, uint64(1), catch.Region)
	assert.Equal(t, primitives.PhaseDispatch, catch.Phase)
}

package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollEvaluatorImmediateValue(t *testing.T) {
	e := PollEvaluator{}
	thunk := func() (any, bool) { return "done", false }

	var got any
	var gotErr error
	done := make(chan struct{})

	f := e.Evaluate(context.Background(), thunk, InlineExecutor)
	f.OnComplete(func(value any, err error) {
		got, gotErr = value, err
		close(done)
	})

	<-done
	require.NoError(t, gotErr)
	require.Equal(t, "done", got)
}

func TestPollEvaluatorEventuallySettles(t *testing.T) {
	e := PollEvaluator{MinInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	calls := 0
	thunk := func() (any, bool) {
		calls++
		return calls, calls < 3
	}

	done := make(chan struct{})
	var got any

	f := e.Evaluate(context.Background(), thunk, InlineExecutor)
	f.OnComplete(func(value any, err error) {
		got = value
		close(done)
	})

	<-done
	require.Equal(t, 3, got)
}

type goroutineExecutor struct{}

func (goroutineExecutor) Run(f func()) { go f() }

func TestPollEvaluatorCancel(t *testing.T) {
	e := PollEvaluator{MinInterval: time.Millisecond, MaxInterval: time.Millisecond}
	thunk := func() (any, bool) { return nil, true }

	done := make(chan struct{})
	var gotErr error

	ctx, cancel := context.WithCancel(context.Background())
	f := e.Evaluate(ctx, thunk, goroutineExecutor{})
	f.OnComplete(func(value any, err error) {
		gotErr = err
		close(done)
	})

	cancel()
	<-done
	require.ErrorIs(t, gotErr, ErrCancelled)
}

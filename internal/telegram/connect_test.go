package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRun mimics telegram.Client.Run: it calls f once connected and returns
// what f returns.
func fakeRun(connectErr error, exited chan<- struct{}) runFunc {
	return func(ctx context.Context, f func(ctx context.Context) error) error {
		defer close(exited)
		if connectErr != nil {
			return connectErr
		}
		return f(ctx)
	}
}

func TestConnectOutlivesCallerContext(t *testing.T) {
	exited := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	stop, err := connect(ctx, fakeRun(nil, exited))
	require.NoError(t, err)

	cancel()
	select {
	case <-exited:
		t.Fatal("connection closed with the caller context")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, stop())
	select {
	case <-exited:
	default:
		t.Fatal("stop returned before run exited")
	}
}

func TestConnectFailsBeforeReady(t *testing.T) {
	exited := make(chan struct{})
	boom := errors.New("dial failed")

	stop, err := connect(context.Background(), fakeRun(boom, exited))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, stop)
}

func TestConnectRunReturnsWithoutCallback(t *testing.T) {
	run := func(context.Context, func(context.Context) error) error { return nil }

	_, err := connect(context.Background(), run)
	assert.Error(t, err)
}

func TestConnectCallerCancelsWhileWaiting(t *testing.T) {
	exited := make(chan struct{})
	run := func(ctx context.Context, _ func(context.Context) error) error {
		defer close(exited)
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := connect(ctx, run)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	select {
	case <-exited:
	default:
		t.Fatal("pending connection left running")
	}
}

func TestDirectReaction(t *testing.T) {
	assert.False(t, directReaction(directReactionLayer-1))
	assert.True(t, directReaction(directReactionLayer))
}

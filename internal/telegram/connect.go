package telegram

import (
	"context"

	"github.com/go-faster/errors"
)

// runFunc has the shape of telegram.Client.Run.
type runFunc func(ctx context.Context, f func(ctx context.Context) error) error

// connect starts run in its own goroutine and returns once the run callback
// is entered, which is when the client is connected. The connection outlives
// ctx; ctx only bounds the wait for readiness. stop cancels the connection
// and waits for run to return.
func connect(ctx context.Context, run runFunc) (stop func() error, err error) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		cancel()
		if err == nil {
			err = errors.New("connection closed before it was ready")
		}
		return nil, err
	case <-ctx.Done():
		cancel()
		<-done
		return nil, ctx.Err()
	}

	return func() error {
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}, nil
}

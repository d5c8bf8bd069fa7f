package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/utils/errutil"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// Dispatch runs task in a new goroutine detached from ctx cancellation. The
// logger of ctx is kept. Errors and panics are logged and reported with the
// task name. The returned channel is closed when task finishes.
func Dispatch(ctx context.Context, name string, task func(ctx context.Context) error) <-chan struct{} {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("task", name))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err := goerr.New("panic in background task", goerr.V("task", name), goerr.V("panic", r))
				_ = errutil.Handle(bgCtx, err, "background task panicked")
			}
		}()

		if err := task(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "background task failed")
			return
		}
		logging.From(bgCtx).Debug("background task completed")
	}()

	return done
}

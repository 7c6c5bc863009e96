package offline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WorkerFactory builds a new worker. A worker whose install failed is
// redundant, so every attempt needs a fresh one.
type WorkerFactory func() (*Worker, error)

// DefaultInstallBackOff retries forever, backing off to one attempt a minute.
func DefaultInstallBackOff() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(time.Minute),
		backoff.WithMaxElapsedTime(0),
	)
}

// InstallWithRetry runs Update with workers from newWorker until one installs,
// ctx ends, or newWorker itself fails. attemptTimeout bounds each attempt when
// positive.
func (r *Registration) InstallWithRetry(ctx context.Context, newWorker WorkerFactory, b backoff.BackOff, attemptTimeout time.Duration) (*Worker, error) {
	attempt := func() (*Worker, error) {
		w, err := newWorker()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create worker: %w", err))
		}

		attemptCtx := ctx
		if attemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, attemptTimeout)
			defer cancel()
		}

		if err := r.Update(attemptCtx, w); err != nil {
			return nil, err
		}
		return w, nil
	}

	notify := func(err error, next time.Duration) {
		slog.WarnContext(ctx, "worker install failed, retrying",
			"component", "offline.Registration",
			"error", err,
			"retry_in", next,
		)
	}

	return backoff.RetryNotifyWithData(attempt, backoff.WithContext(b, ctx), notify)
}

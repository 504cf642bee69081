package calendar

import (
	"context"
	"log/slog"
	"time"
)

// Retrying wraps a Sync with a bounded retry policy: each attempt gets its
// own timeout, attempts are separated by a fixed backoff, and the last
// error is returned once the budget is spent. It never retries forever.
type Retrying struct {
	next     Sync
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

func NewRetrying(next Sync, attempts int, backoff, timeout time.Duration, log *slog.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retrying{
		next:     next,
		attempts: attempts,
		backoff:  backoff,
		timeout:  timeout,
		log:      log.With(slog.String("component", "calendar.retry")),
	}
}

func (r *Retrying) CreateEvent(ctx context.Context, ev Event) (string, error) {
	var ref string
	err := r.do(ctx, "create_event", func(ctx context.Context) error {
		var err error
		ref, err = r.next.CreateEvent(ctx, ev)
		return err
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (r *Retrying) UpdateEvent(ctx context.Context, ref string, ev Event) error {
	return r.do(ctx, "update_event", func(ctx context.Context) error {
		return r.next.UpdateEvent(ctx, ref, ev)
	})
}

func (r *Retrying) DeleteEvent(ctx context.Context, ref string) error {
	return r.do(ctx, "delete_event", func(ctx context.Context) error {
		return r.next.DeleteEvent(ctx, ref)
	})
}

func (r *Retrying) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		r.log.Warn("calendar call failed",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", r.attempts),
			slog.Any("err", lastErr),
		)

		if attempt == r.attempts {
			break
		}
		if r.backoff > 0 {
			timer := time.NewTimer(r.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}

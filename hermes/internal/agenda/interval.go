package agenda

import (
	"context"
	"time"
)

func EveryMinute(
	ctx context.Context,
	action func(ctx context.Context) error,
	errorHandler func(ctx context.Context, err error) error,
) error {
	return Interval(ctx, time.Minute, action, errorHandler)
}

func EverySecond(
	ctx context.Context,
	action func(ctx context.Context) error,
	errorHandler func(ctx context.Context, err error) error,
) error {
	return Interval(ctx, time.Second, action, errorHandler)
}

// Interval runs action right away and then on every boundary of d until ctx
// is cancelled. An error from errorHandler stops the loop.
func Interval(
	ctx context.Context,
	d time.Duration,
	action func(ctx context.Context) error,
	errorHandler func(ctx context.Context, err error) error,
) error {
	for {
		if err := action(ctx); err != nil {
			if err := errorHandler(ctx, err); err != nil {
				return err
			}
		}

		now := time.Now()
		timer := time.NewTimer(now.Add(d).Truncate(d).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

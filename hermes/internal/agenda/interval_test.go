package agenda_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lunagic/hermes/hermes/internal/agenda"
	"gotest.tools/v3/assert"
)

func TestIntervalStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 250*time.Millisecond)
	defer cancel()

	runs := atomic.Int64{}
	err := agenda.Interval(ctx, 50*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, func(ctx context.Context, err error) error {
		return err
	})

	assert.NilError(t, err)
	assert.Assert(t, runs.Load() >= 2)
}

func TestIntervalErrorHandler(t *testing.T) {
	t.Parallel()

	failure := errors.New("database unavailable")

	{ // A handler that swallows the error keeps the loop going
		ctx, cancel := context.WithTimeout(t.Context(), 120*time.Millisecond)
		defer cancel()

		handled := atomic.Int64{}
		err := agenda.Interval(ctx, 20*time.Millisecond, func(ctx context.Context) error {
			return failure
		}, func(ctx context.Context, err error) error {
			handled.Add(1)
			return nil
		})
		assert.NilError(t, err)
		assert.Assert(t, handled.Load() >= 2)
	}

	{ // A handler that returns the error stops it
		err := agenda.EverySecond(t.Context(), func(ctx context.Context) error {
			return failure
		}, func(ctx context.Context, err error) error {
			return err
		})
		assert.ErrorIs(t, err, failure)
	}
}

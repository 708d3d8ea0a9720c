package hermes

import (
	"context"
	"errors"
	"time"

	"github.com/lunagic/hermes/hermes/internal/agenda"
	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/database"
)

type BackgroundJob struct {
	name     string
	interval time.Duration
	action   func(ctx context.Context)
}

type primarySchedulerPayload struct {
	UUID      string
	CheckedIn time.Time
}

func NewBackgroundJob(name string, interval time.Duration, action func(ctx context.Context)) BackgroundJob {
	return BackgroundJob{
		name:     name,
		interval: interval,
		action:   action,
	}
}

const (
	backOffTimeToHandleCollisions = time.Second * 3
	maxTimeWithoutCheckIn         = time.Second * 6
	primaryHeartbeat              = maxTimeWithoutCheckIn / 3
)

// Background starts every job on its own interval. Instances sharing a cache
// elect one primary, and only the primary runs jobs.
func (app *App) Background(ctx context.Context) error {
	primaryTracker := cache.NewRepository[string, primarySchedulerPayload](app.cache, "hermes-primary-scheduler", time.Hour)

	checkIn := func() error {
		return primaryTracker.Set(
			ctx,
			"data",
			primarySchedulerPayload{
				UUID:      app.instanceUUID,
				CheckedIn: time.Now(),
			},
		)
	}

	var primaryServerChecker func(checkNumber int) bool
	primaryServerChecker = func(checkNumber int) bool {
		existingCheckInData, err := primaryTracker.Get(ctx, "data")
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			return false
		}

		if existingCheckInData.UUID == app.instanceUUID {
			return true
		}

		// The current primary is still alive
		if time.Since(existingCheckInData.CheckedIn) <= maxTimeWithoutCheckIn {
			return false
		}

		if err := checkIn(); err != nil {
			return false
		}

		// Let competing check ins land before reading the winner
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backOffTimeToHandleCollisions):
		}

		return primaryServerChecker(checkNumber + 1)
	}

	if len(app.jobs) == 0 {
		return nil
	}

	// The primary keeps its claim fresh between job ticks
	go func() {
		_ = agenda.Interval(
			ctx,
			primaryHeartbeat,
			func(ctx context.Context) error {
				if !primaryServerChecker(1) {
					return nil
				}

				return checkIn()
			},
			func(ctx context.Context, err error) error {
				app.logger.WarnContext(ctx, "Primary Check In Failed", "error", err)

				return nil
			},
		)
	}()

	for _, job := range app.jobs {
		lastRunTracker := cache.NewRepository[string, time.Time](app.cache, "hermes-job-last-ran", job.interval*2)

		jobCanRun := func(ctx context.Context) bool {
			lastRan, err := lastRunTracker.Get(ctx, job.name)
			if err != nil {
				return errors.Is(err, cache.ErrNotFound)
			}

			return time.Since(lastRan) > job.interval
		}

		go func() {
			_ = agenda.Interval(
				ctx,
				job.interval,
				func(ctx context.Context) error {
					if !primaryServerChecker(1) {
						return nil
					}

					// Check in so no other instance tries to take over
					if err := checkIn(); err != nil {
						return err
					}

					if !jobCanRun(ctx) {
						return nil
					}

					if err := lastRunTracker.Set(ctx, job.name, time.Now()); err != nil {
						return err
					}

					go job.action(ctx)

					return nil
				},
				func(ctx context.Context, err error) error {
					app.logger.WarnContext(ctx, "Background Job Failed",
						"job", job.name,
						"error", err,
					)

					return nil
				},
			)
		}()
	}

	return nil
}

// warmSchemas refreshes the cached column list of every table.
func (app *App) warmSchemas(ctx context.Context) {
	for _, table := range database.Tables() {
		columns, err := app.database.Describe(ctx, table.Name)
		if err != nil {
			app.logger.WarnContext(ctx, "Schema Warm Failed",
				"table", table.Name,
				"error", err,
			)
			continue
		}

		if err := app.schemas.Set(ctx, table.Name, columns); err != nil {
			app.logger.WarnContext(ctx, "Schema Warm Failed",
				"table", table.Name,
				"error", err,
			)
		}
	}
}

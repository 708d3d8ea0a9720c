package hermes

import (
	"context"
	"time"

	"github.com/lunagic/hermes/hermesservices/database"
)

const ChangeFeedQueueName = "hermes-changes"

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Table     string             `json:"table"`
	Operation database.Operation `json:"operation"`
	ID        int64              `json:"id"`
	Affected  int64              `json:"affected"`
	At        time.Time          `json:"at"`
}

// publishChange never fails the request. Publish errors are logged.
func (app *App) publishChange(ctx context.Context, event ChangeEvent) {
	if app.changeFeed == nil {
		return
	}

	event.At = time.Now().UTC()

	if err := app.changeFeed.Publish(ctx, event); err != nil {
		app.logger.WarnContext(ctx, "Change Feed Publish Failed",
			"table", event.Table,
			"operation", event.Operation,
			"id", event.ID,
			"error", err,
		)
	}
}

func (app *App) handleChange(ctx context.Context, event ChangeEvent) error {
	app.logger.InfoContext(ctx, "Row Changed",
		"table", event.Table,
		"operation", event.Operation,
		"id", event.ID,
		"affected", event.Affected,
		"at", event.At,
	)

	return nil
}

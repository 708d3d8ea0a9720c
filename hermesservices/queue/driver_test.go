package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/queue"
	"gotest.tools/v3/assert"
)

type changeMessage struct {
	Table string `json:"table"`
	ID    int64  `json:"id"`
}

func testSuite(t *testing.T, driver queue.Driver) {
	t.Cleanup(func() {
		_ = driver.Close()
	})

	queueThing, err := queue.NewQueue[changeMessage](t.Context(), driver, uuid.NewString())
	assert.NilError(t, err)

	expected := changeMessage{Table: "expenses", ID: 42}

	{ // Publish then consume the same message
		assert.NilError(t, queueThing.Publish(t.Context(), expected))

		stop := errors.New(uuid.NewString())
		received := changeMessage{}

		consumeErr := queueThing.Consume(
			t.Context(),
			func(ctx context.Context, payload changeMessage) error {
				received = payload
				return stop
			},
		)
		assert.ErrorIs(t, consumeErr, stop)
		assert.DeepEqual(t, received, expected)
	}

	{ // Cancelling the context stops an idle consumer without error
		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()

		err := queueThing.Consume(ctx, func(ctx context.Context, payload changeMessage) error {
			// The message rejected above may be redelivered
			return nil
		})
		assert.NilError(t, err)
	}
}

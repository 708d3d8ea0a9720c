package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrQueueNotFound = errors.New("queue does not exist")

// DecodeError is returned by Consume when a payload does not decode into the
// queue's message type.
type DecodeError struct {
	Queue   string
	Payload []byte
	Err     error
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("queue %s: undecodable payload %q: %s", err.Queue, err.Payload, err.Err)
}

func (err DecodeError) Unwrap() error {
	return err.Err
}

// Driver delivers opaque payloads. Consume blocks until ctx is cancelled, the
// queue is closed, or handler returns an error.
type Driver interface {
	CreateQueue(ctx context.Context, queueName string) error
	Publish(ctx context.Context, queueName string, payload []byte) error
	Consume(ctx context.Context, queueName string, handler func(ctx context.Context, payload []byte) error) error
	Close() error
}

func NewQueue[T any](ctx context.Context, driver Driver, name string) (Queue[T], error) {
	if err := driver.CreateQueue(ctx, name); err != nil {
		return Queue[T]{}, err
	}

	return Queue[T]{
		driver: driver,
		name:   name,
	}, nil
}

// Queue carries JSON encoded messages of one type.
type Queue[T any] struct {
	driver Driver
	name   string
}

func (q Queue[T]) Name() string {
	return q.name
}

func (q Queue[T]) Publish(ctx context.Context, message T) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return q.driver.Publish(ctx, q.name, payload)
}

func (q Queue[T]) Consume(ctx context.Context, handler Handler[T]) error {
	return q.driver.Consume(ctx, q.name, func(ctx context.Context, payload []byte) error {
		target := *new(T)
		if err := json.Unmarshal(payload, &target); err != nil {
			return DecodeError{Queue: q.name, Payload: payload, Err: err}
		}

		return handler(ctx, target)
	})
}

type Handler[T any] func(ctx context.Context, payload T) error

package queue

import (
	"context"
	"sync"
)

// NewDriverMemory keeps up to bufferSize undelivered payloads per queue.
func NewDriverMemory(bufferSize int) (Driver, error) {
	return &driverMemory{
		mutex:      &sync.Mutex{},
		queues:     map[string]chan []byte{},
		bufferSize: bufferSize,
	}, nil
}

type driverMemory struct {
	mutex      *sync.Mutex
	queues     map[string]chan []byte
	bufferSize int
}

func (driver *driverMemory) CreateQueue(ctx context.Context, queueName string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	if _, found := driver.queues[queueName]; found {
		return nil
	}

	driver.queues[queueName] = make(chan []byte, driver.bufferSize)

	return nil
}

func (driver *driverMemory) queue(queueName string) (chan []byte, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	queue, found := driver.queues[queueName]
	if !found {
		return nil, ErrQueueNotFound
	}

	return queue, nil
}

func (driver *driverMemory) Publish(ctx context.Context, queueName string, payload []byte) error {
	queue, err := driver.queue(queueName)
	if err != nil {
		return err
	}

	select {
	case queue <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (driver *driverMemory) Consume(
	ctx context.Context,
	queueName string,
	handler func(ctx context.Context, payload []byte) error,
) error {
	queue, err := driver.queue(queueName)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case item, open := <-queue:
			if !open {
				return nil
			}

			if err := handler(ctx, item); err != nil {
				return err
			}
		}
	}
}

func (driver *driverMemory) Close() error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for name, queue := range driver.queues {
		close(queue)
		delete(driver.queues, name)
	}

	return nil
}

package completion

import (
	"context"
	"sync"
)

// Responder produces a scripted completion for a prompt.
type Responder func(prompt string, options Options) (Completion, error)

// NewDriverMemory answers from responder without any network access.
func NewDriverMemory(responder Responder) *DriverMemory {
	return &DriverMemory{
		mutex:     &sync.Mutex{},
		responder: responder,
	}
}

// Reply always returns the same content.
func Reply(content string) Responder {
	return func(prompt string, options Options) (Completion, error) {
		return Completion{Content: content}, nil
	}
}

type DriverMemory struct {
	mutex     *sync.Mutex
	responder Responder
	prompts   []string
}

func (driver *DriverMemory) Complete(ctx context.Context, prompt string, options Options) (Completion, error) {
	driver.mutex.Lock()
	driver.prompts = append(driver.prompts, prompt)
	driver.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	return driver.responder(prompt, options)
}

// Prompts returns every prompt received so far.
func (driver *DriverMemory) Prompts() []string {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	return append([]string{}, driver.prompts...)
}

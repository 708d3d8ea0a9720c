package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	Value     string
	ExpiresAt time.Time
}

// NewDriverMemory sweeps expired entries every cleanupInterval until ctx is
// cancelled or the driver is closed.
func NewDriverMemory(ctx context.Context, cleanupInterval time.Duration) (Driver, error) {
	ctx, cancel := context.WithCancel(ctx)

	driver := &driverMemory{
		mutex:  &sync.Mutex{},
		data:   map[string]memoryItem{},
		cancel: cancel,
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				driver.cleanup(now)
			}
		}
	}()

	return driver, nil
}

type driverMemory struct {
	mutex  *sync.Mutex
	data   map[string]memoryItem
	cancel context.CancelFunc
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.data, key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	item, found := driver.data[key]
	if !found || !time.Now().Before(item.ExpiresAt) {
		return "", ErrNotFound
	}

	return item.Value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.data[key] = memoryItem{
		Value:     value,
		ExpiresAt: time.Now().Add(duration),
	}

	return nil
}

func (driver *driverMemory) Close() error {
	driver.cancel()

	return nil
}

func (driver *driverMemory) cleanup(now time.Time) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key, item := range driver.data {
		if now.Before(item.ExpiresAt) {
			continue
		}

		delete(driver.data, key)
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func NewRepository[Key comparable, Value any](
	driver Driver,
	prefix string,
	duration time.Duration,
) *Repository[Key, Value] {
	return &Repository[Key, Value]{
		driver:   driver,
		prefix:   prefix,
		duration: duration,
	}
}

// Repository stores JSON encoded values of one type under a key prefix.
type Repository[Key comparable, Value any] struct {
	driver   Driver
	prefix   string
	duration time.Duration
}

func (r *Repository[Key, Value]) key(key Key) string {
	return fmt.Sprintf("%s:%v", r.prefix, key)
}

func (r *Repository[Key, Value]) Set(ctx context.Context, key Key, value Value) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.driver.Set(ctx, r.key(key), string(jsonBytes), r.duration)
}

func (r *Repository[Key, Value]) Get(ctx context.Context, key Key) (Value, error) {
	val, err := r.driver.Get(ctx, r.key(key))
	if err != nil {
		return *new(Value), err
	}

	target := *new(Value)
	if err := json.Unmarshal([]byte(val), &target); err != nil {
		return *new(Value), err
	}

	return target, nil
}

func (r *Repository[Key, Value]) Delete(ctx context.Context, key Key) error {
	return r.driver.Delete(ctx, r.key(key))
}

// Remember returns the cached value for key, calling load and storing its
// result on a miss. Cache failures other than a miss are returned.
func (r *Repository[Key, Value]) Remember(ctx context.Context, key Key, load func(ctx context.Context) (Value, error)) (Value, error) {
	value, err := r.Get(ctx, key)
	if err == nil {
		return value, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return *new(Value), err
	}

	value, err = load(ctx)
	if err != nil {
		return *new(Value), err
	}

	if err := r.Set(ctx, key, value); err != nil {
		return *new(Value), err
	}

	return value, nil
}

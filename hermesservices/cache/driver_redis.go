package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type DriverRedisConfig struct {
	Host   string
	Number int
	Pass   string
	Port   int
	User   string
	// Prefix namespaces every key so several deployments can share a server.
	Prefix string
}

// NewDriverRedis works with anything that speaks the Redis protocol
// (Valkey, Dragonfly). The server must answer a PING before it returns.
func NewDriverRedis(config DriverRedisConfig) (Driver, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Username: config.User,
		Password: config.Pass,
		DB:       config.Number,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &driverRedis{
		client: client,
		prefix: config.Prefix,
	}, nil
}

type driverRedis struct {
	client *redis.Client
	prefix string
}

func (driver *driverRedis) key(key string) string {
	return driver.prefix + key
}

func (driver *driverRedis) Get(ctx context.Context, key string) (string, error) {
	result, err := driver.client.Get(ctx, driver.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", err
	}

	return result, nil
}

func (driver *driverRedis) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return driver.client.Set(ctx, driver.key(key), value, duration).Err()
}

func (driver *driverRedis) Delete(ctx context.Context, key string) error {
	return driver.client.Del(ctx, driver.key(key)).Err()
}

func (driver *driverRedis) Close() error {
	return driver.client.Close()
}

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/lunagic/hermes/hermesservices/cache"
)

// NewCachedDriver remembers completions for identical requests.
func NewCachedDriver(driver Driver, cacheDriver cache.Driver, duration time.Duration) Driver {
	return &cachedDriver{
		driver:     driver,
		repository: cache.NewRepository[string, Completion](cacheDriver, "completion", duration),
	}
}

type cachedDriver struct {
	driver     Driver
	repository *cache.Repository[string, Completion]
}

func (driver *cachedDriver) Complete(ctx context.Context, prompt string, options Options) (Completion, error) {
	key, err := cacheKey(prompt, options)
	if err != nil {
		return Completion{}, err
	}

	cached, err := driver.repository.Get(ctx, key)
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, cache.ErrNotFound) {
		return Completion{}, err
	}

	result, err := driver.driver.Complete(ctx, prompt, options)
	if err != nil {
		return Completion{}, err
	}

	if options.Accept != nil {
		if err := options.Accept(result); err != nil {
			return result, nil
		}
	}

	if err := driver.repository.Set(ctx, key, result); err != nil {
		return Completion{}, err
	}

	return result, nil
}

func cacheKey(prompt string, options Options) (string, error) {
	toolBytes, err := json.Marshal(options.Tools)
	if err != nil {
		return "", err
	}

	digest := xxhash.New()
	for _, part := range []string{options.Model, options.SystemRole, string(toolBytes), prompt} {
		_, _ = digest.WriteString(part)
		_, _ = digest.Write([]byte{0})
	}

	return strconv.FormatUint(digest.Sum64(), 16), nil
}

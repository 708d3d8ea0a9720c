package completion_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func TestCachedDriver(t *testing.T) {
	t.Parallel()

	cacheDriver, err := cache.NewDriverMemory(t.Context(), time.Minute)
	assert.NilError(t, err)

	memory := completion.NewDriverMemory(completion.Reply(`{"category":"food"}`))
	driver := completion.NewCachedDriver(memory, cacheDriver, time.Minute)

	options := completion.Options{Model: "gpt-4o", SystemRole: completion.DefaultSystemRole}

	{ // Identical requests reach the model once
		for range 3 {
			result, err := driver.Complete(t.Context(), "food", options)
			assert.NilError(t, err)
			assert.Equal(t, result.Content, `{"category":"food"}`)
		}
		assert.Equal(t, len(memory.Prompts()), 1)
	}

	{ // A different model is a different request
		_, err := driver.Complete(t.Context(), "food", completion.Options{Model: "gpt-4o-mini"})
		assert.NilError(t, err)
		assert.Equal(t, len(memory.Prompts()), 2)
	}

	{ // Rejected completions are asked for again
		malformed := completion.NewDriverMemory(completion.Reply("I cannot help with that"))
		driver := completion.NewCachedDriver(malformed, cacheDriver, time.Minute)

		rejecting := options
		rejecting.Accept = func(result completion.Completion) error {
			_, err := completion.ParseFilter(database.TableExpenses, result)
			return err
		}

		for range 2 {
			result, err := driver.Complete(t.Context(), "groceries", rejecting)
			assert.NilError(t, err)
			assert.Equal(t, result.Content, "I cannot help with that")
		}
		assert.Equal(t, len(malformed.Prompts()), 2)
	}

	{ // Failures are not cached
		failing := errors.New("rate limited")
		flaky := completion.NewDriverMemory(func(prompt string, options completion.Options) (completion.Completion, error) {
			return completion.Completion{}, failing
		})
		driver := completion.NewCachedDriver(flaky, cacheDriver, time.Minute)

		for range 2 {
			_, err := driver.Complete(t.Context(), "rent", options)
			assert.ErrorIs(t, err, failing)
		}
		assert.Equal(t, len(flaky.Prompts()), 2)
	}
}

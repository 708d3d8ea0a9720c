package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/cache"
	"gotest.tools/v3/assert"
)

// testSuite runs against every driver. Keys are random so drivers backed by
// a shared server can run it in parallel.
func testSuite(t *testing.T, driver cache.Driver) {
	key := uuid.NewString()
	value := uuid.NewString()

	{ // A missing key reports ErrNotFound
		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Set then Get returns the value
		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second*30))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, actualValue, value)
	}

	{ // Set overwrites
		replacement := uuid.NewString()
		assert.NilError(t, driver.Set(t.Context(), key, replacement, time.Second*30))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, actualValue, replacement)
	}

	{ // Delete removes the key and deleting twice is fine
		assert.NilError(t, driver.Delete(t.Context(), key))
		assert.NilError(t, driver.Delete(t.Context(), key))

		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Values expire
		key = uuid.NewString()
		value = uuid.NewString()

		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second*1))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, actualValue, value)

		time.Sleep(time.Second * 2)

		_, err = driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Typed repositories share the driver under their own prefix
		schemas := cache.NewRepository[string, []cachedColumn](driver, "schema-"+uuid.NewString(), time.Minute)
		columns := []cachedColumn{{Name: "amount"}, {Name: "merchant", Nullable: true}}

		assert.NilError(t, schemas.Set(t.Context(), "expenses", columns))

		actual, err := schemas.Get(t.Context(), "expenses")
		assert.NilError(t, err)
		assert.DeepEqual(t, actual, columns)

		_, err = schemas.Get(t.Context(), "users")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}
}

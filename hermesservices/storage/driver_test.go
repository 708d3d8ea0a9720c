package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/storage"
	"gotest.tools/v3/assert"
)

func testSuite(t *testing.T, driver storage.Driver) {
	assert.NilError(t, driver.IsReady(t.Context()))

	prefix := uuid.NewString()
	fileName := prefix + "/search/" + uuid.NewString() + ".json"
	fileContents := uuid.NewString()

	{ // Confirm file does not already exist
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)
		assert.Assert(t, !found, "file found before putting the file, bad test: %s", fileName)
	}

	{ // Missing files report not found
		_, err := driver.Get(t.Context(), fileName)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}

	{ // Put the file in storage
		assert.NilError(t, driver.Put(
			t.Context(),
			fileName,
			strings.NewReader(fileContents),
		))
		t.Cleanup(func() {
			_ = driver.Delete(context.Background(), fileName)
		})
	}

	{ // Confirm the file is now in storage
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)
		assert.Assert(t, found, "file not found after putting it")
	}

	{ // Confirm the file contents
		reader, err := driver.Get(t.Context(), fileName)
		assert.NilError(t, err)
		defer func() {
			_ = reader.Close()
		}()

		actualContents, err := io.ReadAll(reader)
		assert.NilError(t, err)
		assert.Equal(t, string(actualContents), fileContents)
	}

	{ // List by prefix
		paths, err := driver.List(t.Context(), prefix+"/search/")
		assert.NilError(t, err)
		assert.DeepEqual(t, paths, []string{fileName})

		paths, err = driver.List(t.Context(), uuid.NewString())
		assert.NilError(t, err)
		assert.Equal(t, len(paths), 0)
	}

	{ // Delete the file
		assert.NilError(t, driver.Delete(t.Context(), fileName))
	}

	{ // Confirm it no longer exists
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)
		assert.Assert(t, !found, "file found after deleting: %s", fileName)
	}

	{ // Confirm deleting a file that does not exist does not error out
		assert.NilError(t, driver.Delete(t.Context(), fileName))
	}
}

package database_test

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func expensesWithoutMerchant() database.Table {
	table := database.TableExpenses
	table.Columns = slices.DeleteFunc(slices.Clone(table.Columns), func(column database.Column) bool {
		return column.Name == "merchant"
	})

	return table
}

func testSuite(t *testing.T, driver database.Driver, configFuncs ...database.ServiceConfigFunc) {
	configFuncs = append(configFuncs, database.WithLogger(slog.Default()))
	service, err := database.New(driver, configFuncs...)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	assert.NilError(t, service.Ping(t.Context()))

	{ // Assert that the first migration creates the table
		numberOfChanges, err := service.AutoMigrate(t.Context(), []database.Table{expensesWithoutMerchant()})
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 1)
	}

	{ // Assert that the full migration creates users and adds the missing column
		numberOfChanges, err := service.AutoMigrate(t.Context(), database.Tables())
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 2)
	}

	{ // Assert that running the same migration again does not result in any changes
		numberOfChanges, err := service.AutoMigrate(t.Context(), database.Tables())
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 0)
	}

	{ // Describe reports the live columns
		columns, err := service.Describe(t.Context(), "users")
		assert.NilError(t, err)
		assert.Equal(t, len(columns), 3)
		assert.Equal(t, columns[0].Name, "id")
		assert.Equal(t, columns[1].Name, "name")
		assert.Equal(t, columns[2].Name, "email")
	}

	{ // Describing a missing table fails
		_, err := service.Describe(t.Context(), uuid.NewString())
		assert.ErrorIs(t, err, database.ErrTableNotFound)
	}

	userRepo, err := database.NewRepository(service, "users")
	assert.NilError(t, err)

	{ // Assert that the user crud methods work
		testName := uuid.NewString()
		testEmailAddress := uuid.NewString()

		var newUserID int64
		{ // Create a new user
			newUserID, err = userRepo.Insert(t.Context(), database.UpdateSpec{
				database.Value("name", testName),
				database.Value("email", testEmailAddress),
			})
			assert.NilError(t, err)
			assert.Equal(t, newUserID, int64(1))
		}

		{ // Get the user by ID
			user, err := userRepo.SelectSingle(t.Context(), newUserID)
			assert.NilError(t, err)
			assert.Equal(t, user["name"], testName)
			assert.Equal(t, user["email"], testEmailAddress)
		}

		{ // Update
			newName := uuid.NewString()
			affected, err := userRepo.Update(t.Context(), database.UpdateSpec{
				database.Value("id", newUserID),
				database.Value("name", newName),
			})
			assert.NilError(t, err)
			assert.Equal(t, affected, int64(1))

			users, err := userRepo.SelectMultiple(t.Context(), database.FilterSpec{
				database.Absent("id"),
				database.Value("name", newName),
				database.Absent("email"),
			})
			assert.NilError(t, err)
			assert.Equal(t, len(users), 1)
			assert.Equal(t, users[0]["email"], testEmailAddress)
		}

		{ // Update without an id is refused before reaching the database
			_, err := userRepo.Update(t.Context(), database.UpdateSpec{
				database.Value("name", uuid.NewString()),
			})
			assert.ErrorType(t, err, database.EmptyPredicateError{})
		}

		{ // Update with nothing but the id is refused
			_, err := userRepo.Update(t.Context(), database.UpdateSpec{
				database.Value("id", newUserID),
			})
			assert.ErrorType(t, err, database.EmptyAssignmentError{})
		}

		{ // Delete
			affected, err := userRepo.Delete(t.Context(), newUserID)
			assert.NilError(t, err)
			assert.Equal(t, affected, int64(1))
		}

		{ // Read again to confirm it's gone
			_, err := userRepo.SelectSingle(t.Context(), newUserID)
			assert.ErrorIs(t, err, database.ErrNoRows)
		}
	}

	expenseRepo, err := database.NewRepository(service, "expenses")
	assert.NilError(t, err)

	{ // Assert that absent filter fields are never compared against NULL
		category := uuid.NewString()
		for _, merchant := range []any{"Corner Shop", nil} {
			_, err := expenseRepo.Insert(t.Context(), database.UpdateSpec{
				database.Value("amount", "12.50"),
				database.Value("category", category),
				database.Value("merchant", merchant),
			})
			assert.NilError(t, err)
		}

		expenses, err := expenseRepo.SelectMultiple(t.Context(), database.FilterSpec{
			database.Value("category", category),
			database.Absent("merchant"),
			database.Absent("amount"),
		})
		assert.NilError(t, err)
		assert.Equal(t, len(expenses), 2)

		expenses, err = expenseRepo.SelectMultiple(t.Context(), database.FilterSpec{
			database.Value("category", category),
			database.Value("merchant", "Corner Shop"),
		})
		assert.NilError(t, err)
		assert.Equal(t, len(expenses), 1)
		assert.Assert(t, expenses[0]["created_at"] != nil)
	}

	{ // Read only columns cannot be assigned
		_, err := expenseRepo.Insert(t.Context(), database.UpdateSpec{
			database.Value("created_at", "2024-01-01"),
			database.Value("category", "food"),
		})
		assert.ErrorType(t, err, database.ReadOnlyColumnError{})
	}
}

// reachable returns the driver once a connection can be opened and pinged.
func reachable(driver database.Driver) (database.Driver, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return driver, nil
}

package database_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func TestBuildFilterPredicate(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		Operation      database.Operation
		Spec           database.FilterSpec
		ExpectedText   string
		ExpectedParams []any
		ExpectedError  bool
	}{
		"absent fields are skipped": {
			Operation: database.OperationSelect,
			Spec: database.FilterSpec{
				database.Value("category", "food"),
				database.Absent("merchant"),
				database.Absent("amount"),
			},
			ExpectedText:   "category = ?",
			ExpectedParams: []any{"food"},
		},
		"nil values are treated as absent": {
			Operation: database.OperationSelect,
			Spec: database.FilterSpec{
				database.Value("merchant", nil),
				database.Value("category", "food"),
			},
			ExpectedText:   "category = ?",
			ExpectedParams: []any{"food"},
		},
		"fields keep their order": {
			Operation: database.OperationDelete,
			Spec: database.FilterSpec{
				database.Value("name", "Bob"),
				database.Value("email", "bob@example.com"),
			},
			ExpectedText:   "name = ? AND email = ?",
			ExpectedParams: []any{"Bob", "bob@example.com"},
		},
		"empty select is allowed": {
			Operation:      database.OperationSelect,
			Spec:           database.FilterSpec{database.Absent("category")},
			ExpectedText:   "",
			ExpectedParams: []any{},
		},
		"empty update is refused": {
			Operation:     database.OperationUpdate,
			Spec:          database.FilterSpec{database.Absent("id")},
			ExpectedError: true,
		},
		"empty delete is refused": {
			Operation:     database.OperationDelete,
			Spec:          database.FilterSpec{},
			ExpectedError: true,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fragment, err := database.BuildFilterPredicate(testCase.Operation, testCase.Spec)
			if testCase.ExpectedError {
				assert.ErrorType(t, err, database.EmptyPredicateError{})
				assert.Assert(t, database.IsValidation(err))
				return
			}

			assert.NilError(t, err)
			assert.Equal(t, fragment.Text, testCase.ExpectedText)
			assert.DeepEqual(t, fragment.Params, testCase.ExpectedParams)
		})
	}
}

func TestBuildUpdateAssignment(t *testing.T) {
	t.Parallel()

	{ // The id is excluded from the assignment
		fragment, err := database.BuildUpdateAssignment(database.UpdateSpec{
			database.Value("id", "42"),
			database.Value("name", "Bob"),
		}, database.IDColumn)
		assert.NilError(t, err)
		assert.Equal(t, fragment.Text, "name = ?")
		assert.DeepEqual(t, fragment.Params, []any{"Bob"})
	}

	{ // A nil value assigns NULL
		fragment, err := database.BuildUpdateAssignment(database.UpdateSpec{
			database.Value("merchant", nil),
			database.Value("category", "rent"),
		}, database.IDColumn)
		assert.NilError(t, err)
		assert.Equal(t, fragment.Text, "merchant = ?, category = ?")
		assert.DeepEqual(t, fragment.Params, []any{nil, "rent"})
	}

	{ // Nothing left to assign
		_, err := database.BuildUpdateAssignment(database.UpdateSpec{
			database.Value("id", "42"),
		}, database.IDColumn)
		assert.ErrorType(t, err, database.EmptyAssignmentError{})
		assert.ErrorContains(t, err, "besides id")
	}
}

func TestComposeUpdate(t *testing.T) {
	t.Parallel()

	spec := database.UpdateSpec{
		database.Value("id", "42"),
		database.Value("name", "Bob"),
	}

	predicate, err := database.BuildFilterPredicate(database.OperationUpdate, database.FilterSpec{
		database.Value("id", "42"),
	})
	assert.NilError(t, err)

	assignment, err := database.BuildUpdateAssignment(spec, database.IDColumn)
	assert.NilError(t, err)

	statement, err := database.Compose(database.OperationUpdate, "users", predicate, assignment)
	assert.NilError(t, err)
	assert.Equal(t, statement.SQL, "UPDATE users SET name = ? WHERE id = ?")
	assert.DeepEqual(t, statement.Params, []any{"Bob", "42"})
	assert.Equal(t, statement.PlaceholderCount(), len(statement.Params))
}

func TestComposeSelect(t *testing.T) {
	t.Parallel()

	{ // With a predicate
		predicate, err := database.BuildFilterPredicate(database.OperationSelect, database.FilterSpec{
			database.Value("category", "food"),
			database.Absent("merchant"),
		})
		assert.NilError(t, err)

		statement, err := database.Compose(database.OperationSelect, "expenses", predicate, database.Fragment{})
		assert.NilError(t, err)
		assert.Equal(t, statement.SQL, "SELECT id, created_at, amount, category, merchant FROM expenses WHERE category = ?")
		assert.DeepEqual(t, statement.Params, []any{"food"})
	}

	{ // Without a predicate
		predicate, err := database.BuildFilterPredicate(database.OperationSelect, database.FilterSpec{})
		assert.NilError(t, err)

		statement, err := database.Compose(database.OperationSelect, "users", predicate, database.Fragment{})
		assert.NilError(t, err)
		assert.Equal(t, statement.SQL, "SELECT id, name, email FROM users")
		assert.DeepEqual(t, statement.Params, []any{})
	}
}

func TestComposeInsert(t *testing.T) {
	t.Parallel()

	assignment, err := database.BuildUpdateAssignment(database.UpdateSpec{
		database.Value("name", "Ada"),
		database.Value("email", "ada@example.com"),
	}, database.IDColumn)
	assert.NilError(t, err)

	statement, err := database.Compose(database.OperationInsert, "users", database.Fragment{}, assignment)
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(statement.SQL, "INSERT INTO users"))
	assert.DeepEqual(t, statement.Params, []any{"Ada", "ada@example.com"})
	assert.Equal(t, statement.PlaceholderCount(), 2)
}

func TestComposeDelete(t *testing.T) {
	t.Parallel()

	predicate, err := database.BuildFilterPredicate(database.OperationDelete, database.FilterSpec{
		database.Value("id", int64(7)),
	})
	assert.NilError(t, err)

	statement, err := database.Compose(database.OperationDelete, "users", predicate, database.Fragment{})
	assert.NilError(t, err)
	assert.Equal(t, statement.SQL, "DELETE FROM users WHERE id = ?")
	assert.DeepEqual(t, statement.Params, []any{int64(7)})

	{ // The predicate is checked again at compose time
		_, err := database.Compose(database.OperationDelete, "users", database.Fragment{}, database.Fragment{})
		assert.ErrorType(t, err, database.EmptyPredicateError{})
	}
}

func TestComposeIgnoresFragmentText(t *testing.T) {
	t.Parallel()

	{ // Hand written text never reaches the WHERE clause
		statement, err := database.Compose(database.OperationDelete, "users", database.Fragment{
			Text:    "1 = 1",
			Columns: []string{"id"},
			Params:  []any{int64(3)},
		}, database.Fragment{})
		assert.NilError(t, err)
		assert.Equal(t, statement.SQL, "DELETE FROM users WHERE id = ?")
		assert.DeepEqual(t, statement.Params, []any{int64(3)})
	}

	{ // A column without a value is refused
		_, err := database.Compose(database.OperationDelete, "users", database.Fragment{
			Text:    "1 = 1",
			Columns: []string{"id"},
		}, database.Fragment{})
		assert.ErrorIs(t, err, database.ErrFragmentMismatch)
	}

	{ // Same for an empty text
		_, err := database.Compose(database.OperationDelete, "users", database.Fragment{
			Columns: []string{"id"},
		}, database.Fragment{})
		assert.ErrorIs(t, err, database.ErrFragmentMismatch)
	}

	{ // Assignments are held to the same rule
		_, err := database.Compose(database.OperationUpdate, "users", database.Fragment{
			Columns: []string{"id"},
			Params:  []any{int64(3)},
		}, database.Fragment{
			Text:    "name = 'x', email = 'y'",
			Columns: []string{"name", "email"},
			Params:  []any{"x"},
		})
		assert.ErrorIs(t, err, database.ErrFragmentMismatch)
	}
}

func TestComposeRejectsUnlistedNames(t *testing.T) {
	t.Parallel()

	{ // Unknown table
		_, err := database.Compose(database.OperationSelect, "users; DROP TABLE users", database.Fragment{}, database.Fragment{})
		assert.ErrorType(t, err, database.UnknownTableError{})
		assert.ErrorContains(t, err, "users, expenses")
	}

	{ // Unknown column
		predicate, err := database.BuildFilterPredicate(database.OperationSelect, database.FilterSpec{
			database.Value("password", "hunter2"),
		})
		assert.NilError(t, err)

		_, err = database.Compose(database.OperationSelect, "users", predicate, database.Fragment{})
		assert.ErrorType(t, err, database.UnknownColumnError{})
	}

	{ // Read only column
		assignment, err := database.BuildUpdateAssignment(database.UpdateSpec{
			database.Value("created_at", "2024-01-01"),
		}, database.IDColumn)
		assert.NilError(t, err)

		_, err = database.Compose(database.OperationInsert, "expenses", database.Fragment{}, assignment)
		assert.ErrorType(t, err, database.ReadOnlyColumnError{})
	}
}

func TestComposeIsRepeatable(t *testing.T) {
	t.Parallel()

	spec := database.FilterSpec{
		database.Value("category", "food"),
		database.Value("merchant", "Corner Shop"),
	}

	build := func() database.Statement {
		predicate, err := database.BuildFilterPredicate(database.OperationSelect, spec)
		assert.NilError(t, err)

		statement, err := database.Compose(database.OperationSelect, "expenses", predicate, database.Fragment{})
		assert.NilError(t, err)

		return statement
	}

	expected := build()

	wg := sync.WaitGroup{}
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.DeepEqual(t, build(), expected)
		}()
	}
	wg.Wait()
}

package database_test

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func TestStatementRender(t *testing.T) {
	t.Parallel()

	statement := database.Statement{
		Operation: database.OperationUpdate,
		Table:     "users",
		SQL:       "UPDATE users SET name = ? WHERE id = ?",
		Params:    []any{"Bob", "42"},
	}

	{ // Question placeholders pass through
		query, args, err := statement.Render(sq.Question)
		assert.NilError(t, err)
		assert.Equal(t, query, statement.SQL)
		assert.DeepEqual(t, args, statement.Params)
	}

	{ // Dollar placeholders are numbered
		query, _, err := statement.Render(sq.Dollar)
		assert.NilError(t, err)
		assert.Equal(t, query, "UPDATE users SET name = $1 WHERE id = $2")
	}
}

func TestStatementValidate(t *testing.T) {
	t.Parallel()

	{ // Blank
		err := database.Statement{SQL: "  "}.Validate()
		assert.ErrorIs(t, err, database.ErrBlankQuery)
	}

	{ // Mismatch
		err := database.Statement{SQL: "DELETE FROM users WHERE id = ?"}.Validate()
		assert.ErrorIs(t, err, database.ErrPlaceholderMismatch)
	}
}

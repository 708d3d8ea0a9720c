package database

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Statement is SQL text with "?" placeholders and the values bound to them,
// in order.
type Statement struct {
	Operation Operation
	Table     string
	SQL       string
	Params    []any
}

func (statement Statement) PlaceholderCount() int {
	return strings.Count(statement.SQL, "?")
}

func (statement Statement) Validate() error {
	if strings.TrimSpace(statement.SQL) == "" {
		return ErrBlankQuery
	}

	if statement.PlaceholderCount() != len(statement.Params) {
		return fmt.Errorf(
			"%w: %d placeholders, %d params",
			ErrPlaceholderMismatch,
			statement.PlaceholderCount(),
			len(statement.Params),
		)
	}

	return nil
}

// Render rewrites the placeholders for the target dialect.
func (statement Statement) Render(format sq.PlaceholderFormat) (string, []any, error) {
	if err := statement.Validate(); err != nil {
		return "", nil, err
	}

	query, err := format.ReplacePlaceholders(statement.SQL)
	if err != nil {
		return "", nil, err
	}

	return query, statement.Params, nil
}

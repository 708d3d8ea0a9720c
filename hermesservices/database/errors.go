package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRows                = errors.New("no rows found")
	ErrBlankQuery            = errors.New("blank query")
	ErrTableNotFound         = errors.New("table not found")
	ErrPlaceholderMismatch   = errors.New("placeholder count does not match parameter count")
	ErrFragmentMismatch      = errors.New("fragment column count does not match parameter count")
	errUnsupportedColumnType = errors.New("unsupported column type")
)

type EmptyPredicateError struct {
	Operation Operation
	Table     string
	Spec      FilterSpec
}

func (err EmptyPredicateError) Error() string {
	if err.Table == "" {
		return fmt.Sprintf("%s requires at least one filter field, got %s", err.Operation, err.Spec)
	}

	return fmt.Sprintf("%s on %s requires at least one filter field, got %s", err.Operation, err.Table, err.Spec)
}

type EmptyAssignmentError struct {
	Table      string
	ExcludeKey string
	Spec       UpdateSpec
}

func (err EmptyAssignmentError) Error() string {
	if err.ExcludeKey == "" {
		return fmt.Sprintf("nothing to assign on %s, got %s", err.tableName(), err.Spec)
	}

	return fmt.Sprintf("nothing to assign on %s besides %s, got %s", err.tableName(), err.ExcludeKey, err.Spec)
}

func (err EmptyAssignmentError) tableName() string {
	if err.Table == "" {
		return "table"
	}

	return err.Table
}

type UnknownTableError struct {
	Table string
}

func (err UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table: %q (allowed: %s)", err.Table, strings.Join(TableNames(), ", "))
}

type UnknownColumnError struct {
	Table  string
	Column string
}

func (err UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q on table %s", err.Column, err.Table)
}

type ReadOnlyColumnError struct {
	Table  string
	Column string
}

func (err ReadOnlyColumnError) Error() string {
	return fmt.Sprintf("column %s on table %s is read only", err.Column, err.Table)
}

type InvalidValueError struct {
	Table  string
	Column string
	Value  any
	Err    error
}

func (err InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s.%s: %s", err.Value, err.Table, err.Column, err.Err)
}

func (err InvalidValueError) Unwrap() error {
	return err.Err
}

// IsValidation reports whether err was caused by caller input rather than
// by the database itself.
func IsValidation(err error) bool {
	var (
		emptyPredicate  EmptyPredicateError
		emptyAssignment EmptyAssignmentError
		unknownTable    UnknownTableError
		unknownColumn   UnknownColumnError
		readOnly        ReadOnlyColumnError
		invalidValue    InvalidValueError
	)

	return errors.As(err, &emptyPredicate) ||
		errors.As(err, &emptyAssignment) ||
		errors.As(err, &unknownTable) ||
		errors.As(err, &unknownColumn) ||
		errors.As(err, &readOnly) ||
		errors.As(err, &invalidValue)
}

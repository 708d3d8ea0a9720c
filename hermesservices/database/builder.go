package database

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Fragment is a rendered clause with its ordered parameters. Compose reads
// only Columns and Params; Text is for logging and tests.
type Fragment struct {
	Text    string
	Params  []any
	Columns []string
}

func (fragment Fragment) Empty() bool {
	return len(fragment.Columns) == 0
}

// conditions pairs every column with its parameter. Text is never trusted.
func (fragment Fragment) conditions() ([]sq.Eq, error) {
	if len(fragment.Columns) != len(fragment.Params) {
		return nil, fmt.Errorf(
			"%w: %d columns, %d params",
			ErrFragmentMismatch,
			len(fragment.Columns),
			len(fragment.Params),
		)
	}

	conditions := make([]sq.Eq, 0, len(fragment.Columns))
	for i, column := range fragment.Columns {
		conditions = append(conditions, sq.Eq{column: fragment.Params[i]})
	}

	return conditions, nil
}

// BuildFilterPredicate renders every present field as "column = ?" joined
// with AND. An empty predicate is only accepted for SELECT.
func BuildFilterPredicate(operation Operation, spec FilterSpec) (Fragment, error) {
	fragment := Fragment{
		Params:  []any{},
		Columns: []string{},
	}

	parts := []string{}
	for _, field := range spec.present() {
		parts = append(parts, field.Column+" = ?")
		fragment.Params = append(fragment.Params, field.Value)
		fragment.Columns = append(fragment.Columns, field.Column)
	}

	if len(parts) == 0 && operation.mutates() {
		return Fragment{}, EmptyPredicateError{
			Operation: operation,
			Spec:      spec,
		}
	}

	fragment.Text = strings.Join(parts, " AND ")

	return fragment, nil
}

// BuildUpdateAssignment renders every field except excludeKey as
// "column = ?" joined with commas.
func BuildUpdateAssignment(spec UpdateSpec, excludeKey string) (Fragment, error) {
	fragment := Fragment{
		Params:  []any{},
		Columns: []string{},
	}

	parts := []string{}
	for _, field := range spec {
		if field.absent || field.Column == excludeKey {
			continue
		}

		parts = append(parts, field.Column+" = ?")
		fragment.Params = append(fragment.Params, field.Value)
		fragment.Columns = append(fragment.Columns, field.Column)
	}

	if len(parts) == 0 {
		return Fragment{}, EmptyAssignmentError{
			ExcludeKey: excludeKey,
			Spec:       spec,
		}
	}

	fragment.Text = strings.Join(parts, ", ")

	return fragment, nil
}

// Compose joins the fragments into a statement against an allow-listed
// table. Assignment parameters always precede predicate parameters.
func Compose(operation Operation, tableName string, predicate Fragment, assignment Fragment) (Statement, error) {
	table, err := LookupTable(tableName)
	if err != nil {
		return Statement{}, err
	}

	if err := table.checkColumns(predicate.Columns, false); err != nil {
		return Statement{}, err
	}

	if err := table.checkColumns(assignment.Columns, true); err != nil {
		return Statement{}, err
	}

	if operation.mutates() && predicate.Empty() {
		return Statement{}, EmptyPredicateError{
			Operation: operation,
			Table:     table.Name,
		}
	}

	where, err := predicate.conditions()
	if err != nil {
		return Statement{}, err
	}

	if _, err := assignment.conditions(); err != nil {
		return Statement{}, err
	}

	var builder sq.Sqlizer
	switch operation {
	case OperationSelect:
		selectBuilder := sq.Select(table.ColumnNames()...).From(table.Name)
		for _, condition := range where {
			selectBuilder = selectBuilder.Where(condition)
		}
		builder = selectBuilder
	case OperationInsert:
		if assignment.Empty() {
			return Statement{}, EmptyAssignmentError{Table: table.Name}
		}
		builder = sq.Insert(table.Name).Columns(assignment.Columns...).Values(assignment.Params...)
	case OperationUpdate:
		if assignment.Empty() {
			return Statement{}, EmptyAssignmentError{Table: table.Name, ExcludeKey: IDColumn}
		}
		updateBuilder := sq.Update(table.Name)
		for i, column := range assignment.Columns {
			updateBuilder = updateBuilder.Set(column, assignment.Params[i])
		}
		for _, condition := range where {
			updateBuilder = updateBuilder.Where(condition)
		}
		builder = updateBuilder
	case OperationDelete:
		deleteBuilder := sq.Delete(table.Name)
		for _, condition := range where {
			deleteBuilder = deleteBuilder.Where(condition)
		}
		builder = deleteBuilder
	default:
		return Statement{}, fmt.Errorf("unsupported operation: %s", operation)
	}

	query, params, err := builder.ToSql()
	if err != nil {
		return Statement{}, err
	}

	if params == nil {
		params = []any{}
	}

	statement := Statement{
		Operation: operation,
		Table:     table.Name,
		SQL:       query,
		Params:    params,
	}

	if err := statement.Validate(); err != nil {
		return Statement{}, err
	}

	return statement, nil
}

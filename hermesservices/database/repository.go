package database

import (
	"context"
	"fmt"
)

func NewRepository(service *Service, tableName string) (*Repository, error) {
	table, err := LookupTable(tableName)
	if err != nil {
		return nil, err
	}

	return &Repository{
		service: service,
		table:   table,
	}, nil
}

// Repository runs builder statements against one allow-listed table.
type Repository struct {
	service *Service
	table   Table
}

func (repository *Repository) Table() Table {
	return repository.table
}

func (repository *Repository) SelectMultiple(ctx context.Context, filter FilterSpec) ([]Record, error) {
	statement, err := repository.SelectStatement(filter)
	if err != nil {
		return nil, err
	}

	return repository.service.Select(ctx, statement)
}

// SelectStatement builds the SELECT for filter without running it. An all
// absent filter selects every row.
func (repository *Repository) SelectStatement(filter FilterSpec) (Statement, error) {
	predicate, err := BuildFilterPredicate(OperationSelect, filter)
	if err != nil {
		return Statement{}, err
	}

	return Compose(OperationSelect, repository.table.Name, predicate, Fragment{})
}

// Run executes a statement built by SelectStatement.
func (repository *Repository) Run(ctx context.Context, statement Statement) ([]Record, error) {
	return repository.service.Select(ctx, statement)
}

func (repository *Repository) SelectSingle(ctx context.Context, id any) (Record, error) {
	records, err := repository.SelectMultiple(ctx, FilterSpec{Value(IDColumn, id)})
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}

	return records[0], nil
}

// Insert returns the id of the new row.
func (repository *Repository) Insert(ctx context.Context, values UpdateSpec) (int64, error) {
	assignment, err := BuildUpdateAssignment(values, IDColumn)
	if err != nil {
		return 0, err
	}

	statement, err := Compose(OperationInsert, repository.table.Name, Fragment{}, assignment)
	if err != nil {
		return 0, err
	}

	if !repository.service.driver.usesLastInsertId() {
		statement.SQL += " RETURNING " + IDColumn

		records, err := repository.service.Select(ctx, statement)
		if err != nil {
			return 0, err
		}

		if len(records) == 0 {
			return 0, ErrNoRows
		}

		return toInt64(records[0][IDColumn])
	}

	result, err := repository.service.Execute(ctx, statement)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// Update matches on the id field of values and assigns everything else.
// It returns the number of rows changed.
func (repository *Repository) Update(ctx context.Context, values UpdateSpec) (int64, error) {
	filter := FilterSpec{Absent(IDColumn)}
	if id, found := values.Get(IDColumn); found {
		filter = FilterSpec{Value(IDColumn, id)}
	}

	predicate, err := BuildFilterPredicate(OperationUpdate, filter)
	if err != nil {
		return 0, err
	}

	assignment, err := BuildUpdateAssignment(values, IDColumn)
	if err != nil {
		return 0, err
	}

	statement, err := Compose(OperationUpdate, repository.table.Name, predicate, assignment)
	if err != nil {
		return 0, err
	}

	result, err := repository.service.Execute(ctx, statement)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Delete returns the number of rows removed.
func (repository *Repository) Delete(ctx context.Context, id any) (int64, error) {
	predicate, err := BuildFilterPredicate(OperationDelete, FilterSpec{Value(IDColumn, id)})
	if err != nil {
		return 0, err
	}

	statement, err := Compose(OperationDelete, repository.table.Name, predicate, Fragment{})
	if err != nil {
		return 0, err
	}

	result, err := repository.service.Execute(ctx, statement)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Describe reports the live columns of the table.
func (repository *Repository) Describe(ctx context.Context) ([]ColumnInfo, error) {
	return repository.service.Describe(ctx, repository.table.Name)
}

func (service *Service) Describe(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	statement := service.driver.describeTable(tableName)
	statement.Operation = OperationSelect

	records, err := service.Select(ctx, statement)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	columns := []ColumnInfo{}
	for _, record := range records {
		columns = append(columns, ColumnInfo{
			Name:     fmt.Sprint(record["column_name"]),
			Type:     fmt.Sprint(record["column_type"]),
			Nullable: fmt.Sprint(record["is_nullable"]) == "YES",
		})
	}

	return columns, nil
}

func toInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case int64:
		return typed, nil
	case int32:
		return int64(typed), nil
	case int:
		return int64(typed), nil
	}

	normalized, err := normalizeInteger(fmt.Sprint(value))
	if err != nil {
		return 0, err
	}

	return normalized.(int64), nil
}

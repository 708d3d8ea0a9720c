package database

import (
	"context"
	"errors"
)

// AutoMigrate creates missing tables and adds missing columns. Existing
// columns are never altered or dropped.
func (service *Service) AutoMigrate(ctx context.Context, tables []Table) (changesExecuted int, err error) {
	statements := []Statement{}
	for _, table := range tables {
		tableStatements, err := service.migrationStatements(ctx, table)
		if err != nil {
			return 0, err
		}

		statements = append(statements, tableStatements...)
	}

	for i, statement := range statements {
		if _, err := service.Execute(ctx, statement); err != nil {
			return i, err
		}
	}

	return len(statements), nil
}

func (service *Service) migrationStatements(ctx context.Context, table Table) ([]Statement, error) {
	existing, err := service.Describe(ctx, table.Name)
	if err != nil {
		if !errors.Is(err, ErrTableNotFound) {
			return nil, err
		}

		statement, err := createTableStatement(service.driver, table)
		if err != nil {
			return nil, err
		}

		return []Statement{statement}, nil
	}

	found := map[string]bool{}
	for _, column := range existing {
		found[column.Name] = true
	}

	statements := []Statement{}
	for _, column := range table.Columns {
		if found[column.Name] {
			continue
		}

		statement, err := addColumnStatement(service.driver, table, column)
		if err != nil {
			return nil, err
		}

		statements = append(statements, statement)
	}

	return statements, nil
}

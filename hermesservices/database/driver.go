package database

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type Driver interface {
	Open() (*sql.DB, error)
	Name() string
	convertType(columnType ColumnType) (string, error)
	quoteIdentifier(identifier string) string
	renderColumn(column Column, columnType string) string
	tableSuffix(table Table) string
	describeTable(tableName string) Statement
	placeholderFormat() sq.PlaceholderFormat
	usesLastInsertId() bool
	bindValue(value any) any
}

// ColumnInfo is the live shape of a column as reported by the database.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

func createTableStatement(driver Driver, table Table) (Statement, error) {
	parts := []string{}
	for _, column := range table.Columns {
		definition, err := columnDefinition(driver, column)
		if err != nil {
			return Statement{}, err
		}

		parts = append(parts, definition)
	}

	return Statement{
		Table: table.Name,
		SQL: fmt.Sprintf(
			"CREATE TABLE %s (%s)%s",
			driver.quoteIdentifier(table.Name),
			strings.Join(parts, ", "),
			driver.tableSuffix(table),
		),
		Params: []any{},
	}, nil
}

func addColumnStatement(driver Driver, table Table, column Column) (Statement, error) {
	definition, err := columnDefinition(driver, column)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Table:  table.Name,
		SQL:    fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", driver.quoteIdentifier(table.Name), definition),
		Params: []any{},
	}, nil
}

func columnDefinition(driver Driver, column Column) (string, error) {
	columnType, err := driver.convertType(column.Type)
	if err != nil {
		return "", err
	}

	return driver.renderColumn(column, columnType), nil
}

func renderColumnConstraints(column Column) string {
	constraints := ""
	if column.Default != "" {
		constraints += " DEFAULT " + column.Default
	}

	if !column.Nullable && !column.PrimaryKey {
		constraints += " NOT NULL"
	}

	return constraints
}

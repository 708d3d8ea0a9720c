package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		driver.Name(),
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", driver.Path),
	)
}

func (driver *driverSQLite) Name() string {
	return "sqlite3"
}

func (driver *driverSQLite) convertType(columnType ColumnType) (string, error) {
	switch columnType {
	case ColumnTypeInteger:
		return "INTEGER", nil
	case ColumnTypeText:
		return "TEXT", nil
	case ColumnTypeDecimal:
		return "NUMERIC", nil
	case ColumnTypeDateTime:
		return "DATETIME", nil
	}

	return "", fmt.Errorf("%w: %s", errUnsupportedColumnType, columnType)
}

func (driver *driverSQLite) quoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, identifier)
}

func (driver *driverSQLite) renderColumn(column Column, columnType string) string {
	extras := ""
	if column.PrimaryKey {
		extras = " PRIMARY KEY"
		if column.AutoIncrement {
			extras += " AUTOINCREMENT"
		}
	}

	return fmt.Sprintf(`"%s" %s%s%s`, column.Name, columnType, extras, renderColumnConstraints(column))
}

// SQLite has no column or table comments
func (driver *driverSQLite) tableSuffix(table Table) string {
	return ""
}

func (driver *driverSQLite) describeTable(tableName string) Statement {
	return Statement{
		Table: tableName,
		SQL: `
			SELECT
				name AS column_name,
				type AS column_type,
				CASE WHEN "notnull" = 1 THEN 'NO' ELSE 'YES' END AS is_nullable
			FROM pragma_table_info(?)
			ORDER BY cid
		`,
		Params: []any{tableName},
	}
}

func (driver *driverSQLite) placeholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (driver *driverSQLite) usesLastInsertId() bool {
	return true
}

// bindValue writes times in the text format CURRENT_TIMESTAMP stores.
func (driver *driverSQLite) bindValue(value any) any {
	if typed, ok := value.(time.Time); ok {
		return typed.UTC().Format(time.DateTime)
	}

	return value
}

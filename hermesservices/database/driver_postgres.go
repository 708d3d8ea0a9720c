package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	Name    string
	SSLMode string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	sslMode := driver.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return sql.Open(
		driver.Name(),
		fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			driver.config.Host,
			driver.config.Port,
			driver.config.User,
			driver.config.Pass,
			driver.config.Name,
			sslMode,
		),
	)
}

func (driver *driverPostgres) Name() string {
	return "postgres"
}

func (driver *driverPostgres) convertType(columnType ColumnType) (string, error) {
	switch columnType {
	case ColumnTypeInteger:
		return "bigint", nil
	case ColumnTypeText:
		return "varchar(255)", nil
	case ColumnTypeDecimal:
		return "numeric(12,2)", nil
	case ColumnTypeDateTime:
		return "timestamp", nil
	}

	return "", fmt.Errorf("%w: %s", errUnsupportedColumnType, columnType)
}

func (driver *driverPostgres) quoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, identifier)
}

func (driver *driverPostgres) renderColumn(column Column, columnType string) string {
	if column.PrimaryKey {
		if column.AutoIncrement {
			return fmt.Sprintf(`"%s" %s GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY`, column.Name, columnType)
		}

		return fmt.Sprintf(`"%s" %s PRIMARY KEY`, column.Name, columnType)
	}

	return fmt.Sprintf(`"%s" %s%s`, column.Name, columnType, renderColumnConstraints(column))
}

func (driver *driverPostgres) tableSuffix(table Table) string {
	return ""
}

func (driver *driverPostgres) describeTable(tableName string) Statement {
	return Statement{
		Table: tableName,
		SQL: `
			SELECT
				column_name,
				data_type AS column_type,
				is_nullable
			FROM information_schema.columns
			WHERE
				table_schema = current_schema()
				AND table_name = ?
			ORDER BY ordinal_position
		`,
		Params: []any{tableName},
	}
}

func (driver *driverPostgres) placeholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (driver *driverPostgres) usesLastInsertId() bool {
	return false
}

func (driver *driverPostgres) bindValue(value any) any {
	return value
}

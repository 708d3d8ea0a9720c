package database

import (
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

const mysqlTLSConfigName = "hermes"

// NewDriverMySQL also serves MySQL wire compatible stores such as
// SingleStore and MariaDB.
func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
	// CAPath points at a PEM bundle; when set the connection requires TLS.
	CAPath string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	config := mysql.NewConfig()
	config.User = driver.config.User
	config.Passwd = driver.config.Pass
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", driver.config.Host, driver.config.Port)
	config.DBName = driver.config.Name
	config.ParseTime = true

	if driver.config.CAPath != "" {
		if err := driver.registerTLS(); err != nil {
			return nil, err
		}
		config.TLSConfig = mysqlTLSConfigName
	}

	return sql.Open(driver.Name(), config.FormatDSN())
}

func (driver *driverMySQL) registerTLS() error {
	pem, err := os.ReadFile(driver.config.CAPath)
	if err != nil {
		return err
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return errors.New("no certificates found in CA bundle")
	}

	return mysql.RegisterTLSConfig(mysqlTLSConfigName, &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	})
}

func (driver *driverMySQL) Name() string {
	return "mysql"
}

func (driver *driverMySQL) convertType(columnType ColumnType) (string, error) {
	switch columnType {
	case ColumnTypeInteger:
		return "bigint", nil
	case ColumnTypeText:
		return "varchar(255)", nil
	case ColumnTypeDecimal:
		return "decimal(12,2)", nil
	case ColumnTypeDateTime:
		return "datetime", nil
	}

	return "", fmt.Errorf("%w: %s", errUnsupportedColumnType, columnType)
}

func (driver *driverMySQL) quoteIdentifier(identifier string) string {
	return fmt.Sprintf("`%s`", identifier)
}

func (driver *driverMySQL) renderColumn(column Column, columnType string) string {
	extras := ""
	if column.PrimaryKey {
		extras = " PRIMARY KEY"
		if column.AutoIncrement {
			extras += " AUTO_INCREMENT"
		}
	}

	return fmt.Sprintf(
		"`%s` %s%s%s COMMENT '%s'",
		column.Name,
		columnType,
		renderColumnConstraints(column),
		extras,
		column.Comment,
	)
}

func (driver *driverMySQL) tableSuffix(table Table) string {
	return fmt.Sprintf(" COMMENT='%s'", table.Comment)
}

func (driver *driverMySQL) describeTable(tableName string) Statement {
	return Statement{
		Table: tableName,
		SQL: `
			SELECT
				COLUMN_NAME AS column_name,
				COLUMN_TYPE AS column_type,
				IS_NULLABLE AS is_nullable
			FROM information_schema.columns
			WHERE
				table_schema = (SELECT DATABASE())
				AND table_name = ?
			ORDER BY ORDINAL_POSITION
		`,
		Params: []any{tableName},
	}
}

func (driver *driverMySQL) placeholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (driver *driverMySQL) usesLastInsertId() bool {
	return true
}

func (driver *driverMySQL) bindValue(value any) any {
	if typed, ok := value.(time.Time); ok {
		return typed.UTC()
	}

	return value
}

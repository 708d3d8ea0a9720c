package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/lunagic/hermes/hermestools"
	"github.com/shopspring/decimal"
)

type ColumnType string

const (
	ColumnTypeInteger  ColumnType = "integer"
	ColumnTypeText     ColumnType = "text"
	ColumnTypeDecimal  ColumnType = "decimal"
	ColumnTypeDateTime ColumnType = "datetime"
)

const IDColumn = "id"

type Column struct {
	Name          string
	Type          ColumnType
	Comment       string
	PrimaryKey    bool
	AutoIncrement bool
	ReadOnly      bool
	Nullable      bool
	Default       string
}

type Table struct {
	Name    string
	Comment string
	Columns []Column
}

// The allow-list. Table and column names only ever come from here.
var (
	TableUsers = Table{
		Name:    "users",
		Comment: "application users",
		Columns: []Column{
			{Name: IDColumn, Type: ColumnTypeInteger, PrimaryKey: true, AutoIncrement: true, ReadOnly: true},
			{Name: "name", Type: ColumnTypeText},
			{Name: "email", Type: ColumnTypeText},
		},
	}

	TableExpenses = Table{
		Name:    "expenses",
		Comment: "recorded expenses",
		Columns: []Column{
			{Name: IDColumn, Type: ColumnTypeInteger, PrimaryKey: true, AutoIncrement: true, ReadOnly: true},
			{Name: "created_at", Type: ColumnTypeDateTime, ReadOnly: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "amount", Type: ColumnTypeDecimal, Comment: "amount spent"},
			{Name: "category", Type: ColumnTypeText, Comment: "spending category, e.g. food"},
			{Name: "merchant", Type: ColumnTypeText, Nullable: true, Comment: "where the money was spent"},
		},
	}
)

func Tables() []Table {
	return []Table{
		TableUsers,
		TableExpenses,
	}
}

func TableNames() []string {
	return hermestools.Map(Tables(), func(table Table) string {
		return table.Name
	})
}

func LookupTable(name string) (Table, error) {
	for _, table := range Tables() {
		if table.Name == name {
			return table, nil
		}
	}

	return Table{}, UnknownTableError{Table: name}
}

func (table Table) Column(name string) (Column, bool) {
	for _, column := range table.Columns {
		if column.Name == name {
			return column, true
		}
	}

	return Column{}, false
}

func (table Table) ColumnNames() []string {
	return hermestools.Map(table.Columns, func(column Column) string {
		return column.Name
	})
}

// Writable returns the columns a caller may assign.
func (table Table) Writable() []Column {
	return hermestools.Filter(table.Columns, func(column Column) bool {
		return !column.ReadOnly
	})
}

func (table Table) checkColumns(columns []string, assigning bool) error {
	for _, name := range columns {
		column, found := table.Column(name)
		if !found {
			return UnknownColumnError{Table: table.Name, Column: name}
		}

		if assigning && column.ReadOnly {
			return ReadOnlyColumnError{Table: table.Name, Column: name}
		}
	}

	return nil
}

// NormalizeID converts a raw identifier (usually a path parameter) to the
// type of the table's id column.
func (table Table) NormalizeID(raw any) (any, error) {
	column, found := table.Column(IDColumn)
	if !found {
		return nil, UnknownColumnError{Table: table.Name, Column: IDColumn}
	}

	value, err := column.Normalize(raw)
	if err != nil {
		return nil, InvalidValueError{Table: table.Name, Column: IDColumn, Value: raw, Err: err}
	}

	return value, nil
}

// FilterFromQuery builds a FilterSpec from query string values, walking the
// columns in declaration order. Keys listed in ignore are skipped; any other
// key that is not a column is rejected.
func (table Table) FilterFromQuery(values url.Values, ignore ...string) (FilterSpec, error) {
	for key := range values {
		if slices.Contains(ignore, key) {
			continue
		}

		if _, found := table.Column(key); !found {
			return nil, UnknownColumnError{Table: table.Name, Column: key}
		}
	}

	spec := FilterSpec{}
	for _, column := range table.Columns {
		if !values.Has(column.Name) {
			spec = append(spec, Absent(column.Name))
			continue
		}

		raw := values.Get(column.Name)
		value, err := column.Normalize(raw)
		if err != nil {
			return nil, InvalidValueError{Table: table.Name, Column: column.Name, Value: raw, Err: err}
		}

		spec = append(spec, Value(column.Name, value))
	}

	return spec, nil
}

// FilterFromMap builds a FilterSpec from decoded JSON. Keys that are not
// columns are dropped.
func (table Table) FilterFromMap(input map[string]any) (FilterSpec, error) {
	spec := FilterSpec{}
	for _, column := range table.Columns {
		raw, found := input[column.Name]
		if !found || raw == nil {
			spec = append(spec, Absent(column.Name))
			continue
		}

		value, err := column.Normalize(raw)
		if err != nil {
			return nil, InvalidValueError{Table: table.Name, Column: column.Name, Value: raw, Err: err}
		}

		spec = append(spec, Value(column.Name, value))
	}

	return spec, nil
}

// UpdateFromMap builds an UpdateSpec from a decoded JSON body. Unknown and
// read only keys are rejected.
func (table Table) UpdateFromMap(input map[string]any) (UpdateSpec, error) {
	for key := range input {
		column, found := table.Column(key)
		if !found {
			return nil, UnknownColumnError{Table: table.Name, Column: key}
		}

		if column.ReadOnly {
			return nil, ReadOnlyColumnError{Table: table.Name, Column: key}
		}
	}

	spec := UpdateSpec{}
	for _, column := range table.Writable() {
		raw, found := input[column.Name]
		if !found {
			continue
		}

		value, err := column.Normalize(raw)
		if err != nil {
			return nil, InvalidValueError{Table: table.Name, Column: column.Name, Value: raw, Err: err}
		}

		spec = append(spec, Value(column.Name, value))
	}

	return spec, nil
}

// Normalize converts value to the Go type bound for the column. nil passes
// through untouched.
func (column Column) Normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch column.Type {
	case ColumnTypeInteger:
		return normalizeInteger(value)
	case ColumnTypeText:
		return normalizeText(value)
	case ColumnTypeDecimal:
		return normalizeDecimal(value)
	case ColumnTypeDateTime:
		return normalizeDateTime(value)
	}

	return nil, fmt.Errorf("%w: %s", errUnsupportedColumnType, column.Type)
}

func normalizeInteger(value any) (any, error) {
	switch typed := value.(type) {
	case int:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		if typed != math.Trunc(typed) {
			return nil, errors.New("not a whole number")
		}
		return int64(typed), nil
	case json.Number:
		return typed.Int64()
	case string:
		return strconv.ParseInt(typed, 10, 64)
	}

	return nil, fmt.Errorf("unexpected type %T", value)
}

func normalizeText(value any) (any, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(typed), nil
	}

	return nil, fmt.Errorf("unexpected type %T", value)
}

func normalizeDecimal(value any) (any, error) {
	switch typed := value.(type) {
	case decimal.Decimal:
		return typed, nil
	case int:
		return decimal.NewFromInt(int64(typed)), nil
	case int64:
		return decimal.NewFromInt(typed), nil
	case float64:
		return decimal.NewFromFloat(typed), nil
	case json.Number:
		return decimal.NewFromString(typed.String())
	case string:
		return decimal.NewFromString(typed)
	}

	return nil, fmt.Errorf("unexpected type %T", value)
}

var dateTimeLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

func normalizeDateTime(value any) (any, error) {
	switch typed := value.(type) {
	case time.Time:
		return typed, nil
	case string:
		for _, layout := range dateTimeLayouts {
			parsed, err := time.Parse(layout, typed)
			if err == nil {
				return parsed, nil
			}
		}

		return nil, fmt.Errorf("unrecognized date %q", typed)
	}

	return nil, fmt.Errorf("unexpected type %T", value)
}

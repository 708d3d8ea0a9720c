package database

import (
	"fmt"
	"strings"
)

// Field is a single column and its optional value.
type Field struct {
	Column string
	Value  any
	absent bool
}

func Value(column string, value any) Field {
	return Field{
		Column: column,
		Value:  value,
	}
}

func Absent(column string) Field {
	return Field{
		Column: column,
		absent: true,
	}
}

// Optional returns an absent field when value is nil.
func Optional[T any](column string, value *T) Field {
	if value == nil {
		return Absent(column)
	}

	return Value(column, *value)
}

func (field Field) IsAbsent() bool {
	return field.absent
}

func (field Field) String() string {
	if field.absent {
		return fmt.Sprintf("%s=<absent>", field.Column)
	}

	return fmt.Sprintf("%s=%v", field.Column, field.Value)
}

// FilterSpec is an ordered set of equality conditions. Absent and nil values
// never reach the predicate.
type FilterSpec []Field

func (spec FilterSpec) String() string {
	return formatFields(spec)
}

func (spec FilterSpec) present() []Field {
	fields := []Field{}
	for _, field := range spec {
		if field.absent || field.Value == nil {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}

// UpdateSpec is an ordered set of new column values. A nil value assigns NULL.
type UpdateSpec []Field

func (spec UpdateSpec) String() string {
	return formatFields(spec)
}

// Get returns the value of the first present field named column.
func (spec UpdateSpec) Get(column string) (any, bool) {
	for _, field := range spec {
		if field.Column == column && !field.absent {
			return field.Value, true
		}
	}

	return nil, false
}

func formatFields(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field.String())
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

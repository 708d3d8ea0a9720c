package completion

import (
	"encoding/json"
	"fmt"

	"github.com/lunagic/hermes/hermesservices/database"
)

const (
	FilterToolName    = "apply_filter"
	DefaultSystemRole = "You translate questions about a relational table into equality filters on its columns."
)

// FilterTool describes the filterable columns of table as a JSON schema.
func FilterTool(table database.Table) Tool {
	properties := map[string]any{}
	for _, column := range table.Columns {
		property := map[string]any{
			"type": jsonSchemaType(column.Type),
		}

		if column.Type == database.ColumnTypeDateTime {
			property["format"] = "date-time"
		}

		if column.Comment != "" {
			property["description"] = column.Comment
		}

		properties[column.Name] = property
	}

	return Tool{
		Name:        FilterToolName,
		Description: fmt.Sprintf("Filter rows of the %s table. Only include columns the user asked about.", table.Name),
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"additionalProperties": false,
		},
	}
}

func jsonSchemaType(columnType database.ColumnType) string {
	switch columnType {
	case database.ColumnTypeInteger:
		return "integer"
	case database.ColumnTypeDecimal:
		return "number"
	}

	return "string"
}

// BuildPrompt embeds the user's question and the live table schema.
func BuildPrompt(userPrompt string, columns []database.ColumnInfo) (string, error) {
	schema, err := json.Marshal(columns)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`User prompt: %s
Table schema: %s

Based on the table schema, parse the user's prompt into parameters.
Include only the JSON value without any formatting in your response.
If there is an issue return an empty JSON value.`, userPrompt, schema), nil
}

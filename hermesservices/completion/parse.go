package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lunagic/hermes/hermesservices/database"
)

var errNotAnObject = errors.New("expected a JSON object")

// MalformedCompletionError means the model answered with something that
// cannot be turned into filter parameters.
type MalformedCompletionError struct {
	Content string
	Err     error
}

func (err MalformedCompletionError) Error() string {
	return fmt.Sprintf("malformed completion %q: %s", truncate(err.Content, 120), err.Err)
}

func (err MalformedCompletionError) Unwrap() error {
	return err.Err
}

// ParseFilter reads the filter tool call arguments, or the content when the
// model did not call the tool. Keys that are not columns of table are
// dropped. On failure every field of the returned spec is absent.
func ParseFilter(table database.Table, completion Completion) (database.FilterSpec, error) {
	raw, found := completion.Arguments(FilterToolName)
	if !found {
		raw = completion.Content
	}

	params, err := decodeObject(stripFences(raw))
	if err != nil {
		return absentFilter(table), MalformedCompletionError{Content: raw, Err: err}
	}

	spec, err := table.FilterFromMap(params)
	if err != nil {
		return absentFilter(table), MalformedCompletionError{Content: raw, Err: err}
	}

	return spec, nil
}

func decodeObject(raw string) (map[string]any, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if decoder.More() {
		return nil, errors.New("trailing data after JSON value")
	}

	params, ok := value.(map[string]any)
	if !ok {
		return nil, errNotAnObject
	}

	return params, nil
}

// stripFences removes a surrounding markdown code block.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence and its language tag
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}

func absentFilter(table database.Table) database.FilterSpec {
	spec := database.FilterSpec{}
	for _, name := range table.ColumnNames() {
		spec = append(spec, database.Absent(name))
	}

	return spec
}

func truncate(value string, length int) string {
	if len(value) <= length {
		return value
	}

	for length > 0 && !utf8.RuneStart(value[length]) {
		length--
	}

	return value[:length] + "..."
}

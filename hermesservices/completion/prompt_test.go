package completion_test

import (
	"strings"
	"testing"

	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := completion.BuildPrompt("coffee last week", []database.ColumnInfo{
		{Name: "category", Type: "TEXT"},
	})
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(prompt, "User prompt: coffee last week\n"))
	assert.Assert(t, strings.Contains(prompt, `Table schema: [{"name":"category","type":"TEXT","nullable":false}]`))
}

func TestFilterTool(t *testing.T) {
	t.Parallel()

	tool := completion.FilterTool(database.TableExpenses)
	assert.Equal(t, tool.Name, completion.FilterToolName)

	properties := tool.Parameters["properties"].(map[string]any)
	assert.Equal(t, len(properties), len(database.TableExpenses.Columns))
	assert.Equal(t, properties["amount"].(map[string]any)["type"], "number")
	assert.Equal(t, properties["id"].(map[string]any)["type"], "integer")
	assert.Equal(t, properties["created_at"].(map[string]any)["format"], "date-time")
}

package hermestools_test

import (
	"testing"

	"github.com/lunagic/hermes/hermestools"
	"gotest.tools/v3/assert"
)

func TestMap(t *testing.T) {
	t.Parallel()

	assert.DeepEqual(
		t,
		[]string{
			"id",
			"name",
			"email",
		},
		hermestools.Map(
			tableColumns,
			func(c column) string {
				return c.Name
			},
		),
	)
}

package hermestools_test

type column struct {
	Name     string
	ReadOnly bool
}

var (
	columnID     = column{Name: "id", ReadOnly: true}
	columnName   = column{Name: "name"}
	columnEmail  = column{Name: "email"}
	tableColumns = []column{columnID, columnName, columnEmail}
)

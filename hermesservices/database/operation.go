package database

type Operation string

const (
	OperationSelect Operation = "SELECT"
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// mutates reports whether the operation changes rows matched by a predicate.
func (operation Operation) mutates() bool {
	return operation == OperationUpdate || operation == OperationDelete
}

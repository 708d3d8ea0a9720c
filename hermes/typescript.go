package hermes

import (
	"io"
	"net/http"
	"reflect"

	"github.com/lunagic/typescript-go/typescript"
)

type typeScriptConfig struct {
	namespace  string
	fileWriter io.Writer
}

func (config typeScriptConfig) Enabled() bool {
	return config.fileWriter != nil
}

// User and Expense mirror the rows served by the HTTP API. They exist for the
// generated client types.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Expense struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"created_at"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Merchant  *string `json:"merchant"`
}

type ExpenseInput struct {
	Amount   *float64 `json:"amount,omitempty"`
	Category string   `json:"category,omitempty"`
	Merchant *string  `json:"merchant,omitempty"`
}

func (app *App) generateTypeScript() error {
	if !app.typeScript.Enabled() {
		return nil
	}

	ts := typescript.New(
		typescript.WithCustomNamespace(app.typeScript.namespace),
		typescript.WithTypes(map[string]reflect.Type{
			"User":         reflect.TypeFor[User](),
			"UserInput":    reflect.TypeFor[UserInput](),
			"Expense":      reflect.TypeFor[Expense](),
			"ExpenseInput": reflect.TypeFor[ExpenseInput](),
		}),
		typescript.WithRoutes(typeScriptRoutes()),
	)

	return ts.Generate(app.typeScript.fileWriter)
}

func typeScriptRoutes() map[string]typescript.Route {
	return map[string]typescript.Route{
		"ListUsers": {
			Path:         "/users",
			Method:       http.MethodGet,
			ResponseBody: reflect.TypeFor[[]User](),
		},
		"GetUser": {
			Path:         "/users/{id}",
			Method:       http.MethodGet,
			ResponseBody: reflect.TypeFor[User](),
		},
		"CreateUser": {
			Path:         "/user",
			Method:       http.MethodPost,
			RequestBody:  reflect.TypeFor[UserInput](),
			ResponseBody: reflect.TypeFor[string](),
		},
		"UpdateUser": {
			Path:         "/user/{id}",
			Method:       http.MethodPatch,
			RequestBody:  reflect.TypeFor[UserInput](),
			ResponseBody: reflect.TypeFor[string](),
		},
		"DeleteUser": {
			Path:         "/user/{id}",
			Method:       http.MethodDelete,
			ResponseBody: reflect.TypeFor[string](),
		},
		"ListExpenses": {
			Path:         "/expenses",
			Method:       http.MethodGet,
			ResponseBody: reflect.TypeFor[[]Expense](),
		},
		"GetExpense": {
			Path:         "/expenses/{id}",
			Method:       http.MethodGet,
			ResponseBody: reflect.TypeFor[Expense](),
		},
		"CreateExpense": {
			Path:         "/expense",
			Method:       http.MethodPost,
			RequestBody:  reflect.TypeFor[ExpenseInput](),
			ResponseBody: reflect.TypeFor[string](),
		},
		"UpdateExpense": {
			Path:         "/expense/{id}",
			Method:       http.MethodPatch,
			RequestBody:  reflect.TypeFor[ExpenseInput](),
			ResponseBody: reflect.TypeFor[string](),
		},
		"DeleteExpense": {
			Path:         "/expense/{id}",
			Method:       http.MethodDelete,
			ResponseBody: reflect.TypeFor[string](),
		},
		"SearchExpenses": {
			Path:         "/search",
			Method:       http.MethodGet,
			ResponseBody: reflect.TypeFor[[]Expense](),
		},
	}
}

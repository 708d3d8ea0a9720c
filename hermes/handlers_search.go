package hermes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/poseidon/poseidon"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultSearchTable = "expenses"

// search turns the free text in q into an equality filter on table with the
// completion driver, then runs it. A reply that is not a usable filter is
// rejected with 502 rather than run as an unconditional query.
func (app *App) search(w http.ResponseWriter, r *http.Request) (err error) {
	ctx := r.Context()

	tableName := r.URL.Query().Get("table")
	if tableName == "" {
		tableName = defaultSearchTable
	}

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}

		var malformed completion.MalformedCompletionError
		if errors.As(err, &malformed) {
			outcome = "malformed"
		}

		app.searches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("table", tableName),
			attribute.String("outcome", outcome),
		))
	}()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		return ErrMissingQuery
	}

	repository, err := database.NewRepository(app.database, tableName)
	if err != nil {
		return err
	}

	if app.completion == nil {
		return ErrCompletionNotConfigured
	}

	columns, err := app.schemas.Remember(ctx, tableName, func(ctx context.Context) ([]database.ColumnInfo, error) {
		return repository.Describe(ctx)
	})
	if err != nil {
		return err
	}

	prompt, err := completion.BuildPrompt(query, columns)
	if err != nil {
		return err
	}

	parses := func(result completion.Completion) error {
		_, err := completion.ParseFilter(repository.Table(), result)
		return err
	}

	result, err := app.completion.Complete(ctx, prompt, completion.Options{
		Model:      app.config.OpenAIModel,
		SystemRole: completion.DefaultSystemRole,
		Tools:      []completion.Tool{completion.FilterTool(repository.Table())},
		Accept:     parses,
	})
	if err != nil {
		return err
	}

	transcript := Transcript{
		Query:      query,
		Table:      tableName,
		Completion: result,
	}

	filter, err := completion.ParseFilter(repository.Table(), result)
	if err != nil {
		transcript.Error = err.Error()
		app.archive(ctx, transcript)

		return err
	}

	statement, err := repository.SelectStatement(filter)
	if err != nil {
		return err
	}

	records, err := repository.Run(ctx, statement)
	if err != nil {
		return err
	}

	transcript.SQL = statement.SQL
	transcript.Params = statement.Params
	transcript.Rows = len(records)
	app.archive(ctx, transcript)

	poseidon.RespondJSON(w, http.StatusOK, records)

	return nil
}

package hermes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/poseidon/poseidon"
)

// rowHandlers serves CRUD for one table. Collection routes use the plural
// table name and single row mutations use the singular.
type rowHandlers struct {
	app        *App
	repository *database.Repository
	collection string
	single     string
	label      string
}

func (app *App) rowHandlers() []rowHandlers {
	return []rowHandlers{
		app.newRowHandlers(database.TableUsers, "user", "User"),
		app.newRowHandlers(database.TableExpenses, "expense", "Expense"),
	}
}

func (app *App) newRowHandlers(table database.Table, single string, label string) rowHandlers {
	repository, err := database.NewRepository(app.database, table.Name)
	if err != nil {
		// Only called with tables from the allow-list
		panic(err)
	}

	return rowHandlers{
		app:        app,
		repository: repository,
		collection: table.Name,
		single:     single,
		label:      label,
	}
}

func (rows rowHandlers) list(w http.ResponseWriter, r *http.Request) error {
	filter, err := rows.repository.Table().FilterFromQuery(r.URL.Query())
	if err != nil {
		return err
	}

	records, err := rows.repository.SelectMultiple(r.Context(), filter)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, records)

	return nil
}

func (rows rowHandlers) get(w http.ResponseWriter, r *http.Request) error {
	id, err := rows.repository.Table().NormalizeID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	record, err := rows.repository.SelectSingle(r.Context(), id)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, record)

	return nil
}

func (rows rowHandlers) create(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(r)
	if err != nil {
		return err
	}

	values, err := rows.repository.Table().UpdateFromMap(body)
	if err != nil {
		return err
	}

	id, err := rows.repository.Insert(r.Context(), values)
	if err != nil {
		return err
	}

	rows.app.publishChange(r.Context(), ChangeEvent{
		Table:     rows.collection,
		Operation: database.OperationInsert,
		ID:        id,
		Affected:  1,
	})

	respondText(w, http.StatusCreated, strconv.FormatInt(id, 10))

	return nil
}

// update takes the id from the path. An id in the body is ignored.
func (rows rowHandlers) update(w http.ResponseWriter, r *http.Request) error {
	rawID := chi.URLParam(r, "id")
	id, err := rows.repository.Table().NormalizeID(rawID)
	if err != nil {
		return err
	}

	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	delete(body, database.IDColumn)

	values, err := rows.repository.Table().UpdateFromMap(body)
	if err != nil {
		return err
	}

	affected, err := rows.repository.Update(r.Context(), append(values, database.Value(database.IDColumn, id)))
	if err != nil {
		return err
	}

	rows.publish(r, database.OperationUpdate, id, affected)

	respondText(w, http.StatusOK, fmt.Sprintf("%s with ID %s updated", rows.label, rawID))

	return nil
}

func (rows rowHandlers) delete(w http.ResponseWriter, r *http.Request) error {
	rawID := chi.URLParam(r, "id")
	id, err := rows.repository.Table().NormalizeID(rawID)
	if err != nil {
		return err
	}

	affected, err := rows.repository.Delete(r.Context(), id)
	if err != nil {
		return err
	}

	rows.publish(r, database.OperationDelete, id, affected)

	respondText(w, http.StatusOK, fmt.Sprintf("%s with ID %s deleted", rows.label, rawID))

	return nil
}

func (rows rowHandlers) publish(r *http.Request, operation database.Operation, id any, affected int64) {
	if affected == 0 {
		return
	}

	typedID, _ := id.(int64)
	rows.app.publishChange(r.Context(), ChangeEvent{
		Table:     rows.collection,
		Operation: operation,
		ID:        typedID,
		Affected:  affected,
	})
}

// decodeBody reads a JSON object, keeping numbers as json.Number.
func decodeBody(r *http.Request) (map[string]any, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	body := map[string]any{}
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, InvalidBodyError{Err: errors.New("empty body")}
		}

		return nil, InvalidBodyError{Err: err}
	}

	if decoder.More() {
		return nil, InvalidBodyError{Err: errors.New("unexpected data after JSON object")}
	}

	return body, nil
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

package hermes

import (
	"errors"
	"net/http"

	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/poseidon/poseidon"
)

var (
	ErrDatabaseRequired        = errors.New("a database service is required")
	ErrMissingQuery            = errors.New("query parameter q is required")
	ErrCompletionNotConfigured = errors.New("no completion driver configured")
)

// InvalidBodyError is returned when a request body is not a JSON object.
type InvalidBodyError struct {
	Err error
}

func (err InvalidBodyError) Error() string {
	return "invalid request body: " + err.Err.Error()
}

func (err InvalidBodyError) Unwrap() error {
	return err.Err
}

func statusForError(err error) int {
	var (
		invalidBody InvalidBodyError
		malformed   completion.MalformedCompletionError
	)

	switch {
	case errors.As(err, &invalidBody),
		errors.Is(err, ErrMissingQuery),
		database.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNoRows):
		return http.StatusNotFound
	case errors.As(err, &malformed):
		return http.StatusBadGateway
	case errors.Is(err, ErrCompletionNotConfigured):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// respondError writes err as a JSON string. Server side failures are logged
// as errors, caller mistakes as warnings.
func (app *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	if status >= http.StatusInternalServerError {
		app.logger.ErrorContext(r.Context(), "Request Failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	} else {
		app.logger.WarnContext(r.Context(), "Request Rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	poseidon.RespondJSON(w, status, err.Error())
}

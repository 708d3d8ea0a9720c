package hermes

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermesservices/vault"
	"github.com/lunagic/poseidon/poseidon"
)

type ConfigurationFunc func(app *App) error

func WithLogger(logger *slog.Logger) ConfigurationFunc {
	return func(app *App) error {
		app.logger = logger

		return nil
	}
}

func WithDatabase(databaseService *database.Service) ConfigurationFunc {
	return func(app *App) error {
		app.database = databaseService

		return nil
	}
}

func WithCompletion(driver completion.Driver) ConfigurationFunc {
	return func(app *App) error {
		app.completion = driver

		return nil
	}
}

// WithCache shares a cache between the schema cache and background job
// coordination. Instances that should elect a single primary must share it.
func WithCache(driver cache.Driver) ConfigurationFunc {
	return func(app *App) error {
		app.cache = driver

		return nil
	}
}

// WithStorage archives search transcripts. A non nil vault encrypts them.
func WithStorage(driver storage.Driver, v *vault.Vault) ConfigurationFunc {
	return func(app *App) error {
		app.storage = driver
		app.vault = v

		return nil
	}
}

func WithChangeFeed(driver queue.Driver) ConfigurationFunc {
	return func(app *App) error {
		app.changeFeedDriver = driver

		return nil
	}
}

func WithMiddlewares(middlewares poseidon.Middlewares) ConfigurationFunc {
	return func(app *App) error {
		app.middlewares = append(app.middlewares, middlewares...)

		return nil
	}
}

// WithHandler mounts an extra handler next to the built in routes.
func WithHandler(path string, handler http.Handler) ConfigurationFunc {
	return func(app *App) error {
		app.handlers[path] = handler

		return nil
	}
}

func WithBackgroundJobs(jobs ...BackgroundJob) ConfigurationFunc {
	return func(app *App) error {
		app.jobs = append(app.jobs, jobs...)

		return nil
	}
}

func WithTypeScriptOutput(namespace string, writer io.Writer) ConfigurationFunc {
	return func(app *App) error {
		app.typeScript.namespace = namespace
		app.typeScript.fileWriter = writer

		return nil
	}
}

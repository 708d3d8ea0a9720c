package hermes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermesservices/vault"
	"github.com/lunagic/poseidon/poseidon"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/lunagic/hermes/hermes"

func NewApp(
	ctx context.Context,
	config AppConfig,
	configFuncs ...ConfigurationFunc,
) (
	*App,
	error,
) {
	// Build the service with the defaults
	app := &App{
		config:       config,
		handlers:     map[string]http.Handler{},
		logger:       slog.Default(),
		instanceUUID: uuid.NewString(),
	}

	// Process all config functions provided by the user
	for _, configFunc := range configFuncs {
		if err := configFunc(app); err != nil {
			return nil, err
		}
	}

	if app.database == nil {
		return nil, ErrDatabaseRequired
	}

	if app.cache == nil {
		cacheDriver, err := cache.NewDriverMemory(ctx, time.Minute)
		if err != nil {
			return nil, err
		}

		app.cache = cacheDriver
	}

	app.schemas = cache.NewRepository[string, []database.ColumnInfo](app.cache, "hermes-schema", config.AppSchemaCacheTTL)

	if config.AppAutoMigrate {
		changes, err := app.database.AutoMigrate(ctx, database.Tables())
		if err != nil {
			return nil, err
		}

		if changes > 0 {
			app.logger.InfoContext(ctx, "Database Migrated", "changes", changes)
		}
	}

	if app.changeFeedDriver != nil {
		changeFeed, err := queue.NewQueue[ChangeEvent](ctx, app.changeFeedDriver, ChangeFeedQueueName)
		if err != nil {
			return nil, err
		}

		app.changeFeed = &changeFeed
	}

	if config.AppSchemaWarmInterval > 0 {
		app.jobs = append(app.jobs, NewBackgroundJob("schema-warmer", config.AppSchemaWarmInterval, app.warmSchemas))
	}

	searches, err := otel.Meter(instrumentationName).Int64Counter(
		"hermes.search.requests",
		metric.WithDescription("Number of natural language searches"),
	)
	if err != nil {
		return nil, err
	}
	app.searches = searches

	if err := app.generateTypeScript(); err != nil {
		return nil, err
	}

	app.httpHandler = app.buildHandler()

	return app, nil
}

type App struct {
	config           AppConfig
	logger           *slog.Logger
	instanceUUID     string
	database         *database.Service
	completion       completion.Driver
	cache            cache.Driver
	schemas          *cache.Repository[string, []database.ColumnInfo]
	storage          storage.Driver
	vault            *vault.Vault
	changeFeedDriver queue.Driver
	changeFeed       *queue.Queue[ChangeEvent]
	jobs             []BackgroundJob
	typeScript       typeScriptConfig
	middlewares      poseidon.Middlewares
	handlers         map[string]http.Handler
	httpHandler      http.Handler
	searches         metric.Int64Counter
}

// Start runs the background jobs and the change feed consumer and serves
// HTTP until ctx is cancelled.
func (app *App) Start(ctx context.Context) error {
	if err := app.Background(ctx); err != nil {
		return err
	}

	if app.changeFeed != nil {
		go func() {
			if err := app.changeFeed.Consume(ctx, app.handleChange); err != nil {
				app.logger.ErrorContext(ctx, "Change Feed Stopped", "error", err)
			}
		}()
	}

	return app.Serve(ctx)
}

// Serve the application over HTTP
func (app *App) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.config.ListenAddr())
	if err != nil {
		return err
	}

	app.logger.Info(
		"Server Listen on HTTP",
		"addr", fmt.Sprintf("http://%s", strings.ReplaceAll(listener.Addr().String(), "[::]", "0.0.0.0")),
	)

	server := &http.Server{
		Handler:           app.httpHandler,
		Addr:              app.config.ListenAddr(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.AppShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("Server Shutdown", "error", err)
		}
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) Handler() http.Handler {
	return app.httpHandler
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lunagic/hermes/hermes"
	"github.com/lunagic/hermes/hermesservices/database"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := hermes.LoadConfig()
	if err != nil {
		return err
	}

	logger := config.Logger()
	slog.SetDefault(logger)

	databaseService, err := config.Database(database.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		_ = databaseService.Close()
	}()

	cacheDriver, err := config.Cache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = cacheDriver.Close()
	}()

	queueDriver, err := config.Queue()
	if err != nil {
		return err
	}
	defer func() {
		_ = queueDriver.Close()
	}()

	storageDriver, err := config.Storage()
	if err != nil {
		return err
	}

	v, err := config.Vault()
	if err != nil {
		return err
	}

	configFuncs := []hermes.ConfigurationFunc{
		hermes.WithLogger(logger),
		hermes.WithDatabase(databaseService),
		hermes.WithCache(cacheDriver),
		hermes.WithChangeFeed(queueDriver),
		hermes.WithStorage(storageDriver, v),
	}

	completionDriver, err := config.Completion(cacheDriver)
	if err != nil {
		// Search answers 503 until a completion driver is configured
		logger.Warn("Completion Disabled", "error", err)
	} else {
		configFuncs = append(configFuncs, hermes.WithCompletion(completionDriver))
	}

	if config.AppTypeScriptPath != "" {
		file, err := os.Create(config.AppTypeScriptPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = file.Close()
		}()

		configFuncs = append(configFuncs, hermes.WithTypeScriptOutput("Hermes", file))
	}

	app, err := hermes.NewApp(ctx, config, configFuncs...)
	if err != nil {
		return err
	}

	return app.Start(ctx)
}

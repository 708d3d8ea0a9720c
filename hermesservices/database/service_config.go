package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type ServiceConfigFunc func(service *Service) error

func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		return callback(service.db.DB)
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string, args []any) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

func WithConnectionLimits(maxOpen int, maxIdle int, maxLifetime time.Duration) ServiceConfigFunc {
	return func(service *Service) error {
		service.db.SetMaxOpenConns(maxOpen)
		service.db.SetMaxIdleConns(maxIdle)
		service.db.SetConnMaxLifetime(maxLifetime)

		return nil
	}
}

func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string, args []any) error {
			logger.DebugContext(ctx, "Database Run",
				"statement", statement,
				"args", args,
			)

			return nil
		})

		return nil
	}
}

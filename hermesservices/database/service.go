package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/lunagic/hermes/hermesservices/database"

// Record is a single row keyed by column name.
type Record map[string]any

type Service struct {
	driver            Driver
	db                *sqlx.DB
	preRunFuncs       []func(ctx context.Context, statement string, args []any) error
	postRunFuncs      []func(ctx context.Context) error
	tracer            trace.Tracer
	statementCounter  metric.Int64Counter
	statementDuration metric.Float64Histogram
}

func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(instrumentationName)

	statementCounter, err := meter.Int64Counter(
		"hermes.database.statements",
		metric.WithDescription("Number of statements executed"),
	)
	if err != nil {
		return nil, err
	}

	statementDuration, err := meter.Float64Histogram(
		"hermes.database.statement.duration",
		metric.WithDescription("Statement execution time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	service := &Service{
		driver:            driver,
		db:                sqlx.NewDb(db, driver.Name()),
		preRunFuncs:       []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:      []func(ctx context.Context) error{},
		tracer:            otel.Tracer(instrumentationName),
		statementCounter:  statementCounter,
		statementDuration: statementDuration,
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

func (service *Service) Ping(ctx context.Context) error {
	return service.db.PingContext(ctx)
}

func (service *Service) Close() error {
	return service.db.Close()
}

// Select runs a statement that returns rows.
func (service *Service) Select(ctx context.Context, statement Statement) ([]Record, error) {
	records := []Record{}

	err := service.run(ctx, statement, func(ctx context.Context, query string, args []any) error {
		rows, err := service.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		for rows.Next() {
			row := map[string]any{}
			if err := rows.MapScan(row); err != nil {
				return err
			}

			records = append(records, normalizeRecord(row))
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Execute runs a statement that does not return rows.
func (service *Service) Execute(ctx context.Context, statement Statement) (sql.Result, error) {
	var result sql.Result

	err := service.run(ctx, statement, func(ctx context.Context, query string, args []any) error {
		var err error
		result, err = service.db.ExecContext(ctx, query, args...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (service *Service) run(
	ctx context.Context,
	statement Statement,
	action func(ctx context.Context, query string, args []any) error,
) (err error) {
	preparedQuery, preparedArgs, err := statement.Render(service.driver.placeholderFormat())
	if err != nil {
		return err
	}

	boundArgs := make([]any, 0, len(preparedArgs))
	for _, arg := range preparedArgs {
		boundArgs = append(boundArgs, service.driver.bindValue(arg))
	}
	preparedArgs = boundArgs

	attributes := []attribute.KeyValue{
		attribute.String("db.system", service.driver.Name()),
		attribute.String("db.operation", string(statement.Operation)),
		attribute.String("db.sql.table", statement.Table),
	}

	spanName := "database"
	if statement.Operation != "" {
		spanName += " " + string(statement.Operation)
	}

	ctx, span := service.tracer.Start(
		ctx,
		spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attributes, attribute.String("db.statement", preparedQuery))...),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if timing := servertiming.FromContext(ctx); timing != nil {
		timingMetric := timing.NewMetric("db").WithDesc(string(statement.Operation) + " " + statement.Table).Start()
		defer timingMetric.Stop()
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedQuery, preparedArgs); err != nil {
			return err
		}
	}

	start := time.Now()
	err = action(ctx, preparedQuery, preparedArgs)

	service.statementCounter.Add(ctx, 1, metric.WithAttributes(append(attributes, attribute.Bool("error", err != nil))...))
	service.statementDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(attributes...))

	if err != nil {
		return err
	}

	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return err
		}
	}

	return nil
}

func normalizeRecord(row map[string]any) Record {
	record := Record{}
	for column, value := range row {
		// Text columns come back as raw bytes from several drivers
		if raw, ok := value.([]byte); ok {
			record[column] = string(raw)
			continue
		}

		record[column] = value
	}

	return record
}

package hermes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lunagic/poseidon/poseidon"
	servertiming "github.com/mitchellh/go-server-timing"
)

func (app *App) buildHandler() http.Handler {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		app.requestLogger,
		func(next http.Handler) http.Handler {
			return servertiming.Middleware(next, nil)
		},
	)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello, World!"))
	})
	router.Get("/healthz", app.handle(app.healthCheck))
	router.Get("/search", app.handle(app.search))

	for _, rows := range app.rowHandlers() {
		router.Get("/"+rows.collection, app.handle(rows.list))
		router.Get("/"+rows.collection+"/{id}", app.handle(rows.get))
		router.Post("/"+rows.single, app.handle(rows.create))
		router.Patch("/"+rows.single+"/{id}", app.handle(rows.update))
		router.Delete("/"+rows.single+"/{id}", app.handle(rows.delete))
	}

	for path, handler := range app.handlers {
		router.Handle(path, handler)
	}

	return app.middlewares.Apply(router)
}

// handle turns an error returning handler into an http.HandlerFunc. Errors
// after a response has started are only logged.
func (app *App) handle(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackableWriter := poseidon.NewResponseWriter(w)

		err := handler(trackableWriter, r)
		if err == nil {
			return
		}

		if trackableWriter.Written() {
			app.logger.ErrorContext(r.Context(), "Request Failed After Write",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			return
		}

		app.respondError(trackableWriter, r, err)
	}
}

func (app *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		app.logger.DebugContext(r.Context(), "HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.Status(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}

func (app *App) healthCheck(w http.ResponseWriter, r *http.Request) error {
	if err := app.database.Ping(r.Context()); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))

	return nil
}

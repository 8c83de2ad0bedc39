package httpapi

import (
	"net/http"

	"mediadl/internal/http/handlers"
	mw "mediadl/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options carry the cross-cutting settings applied to every route.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  mw.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		middleware.RealIP,
		mw.Logger(opts.Logger),
		middleware.Recoverer,
		mw.CORS(opts.AllowedOrigins),
		mw.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Post("/validate", app.Validate)
		r.Post("/download", app.StartDownload)
		r.Get("/download/{id}", app.DownloadStatus)
		r.Get("/downloads", app.ListDownloads)
		r.Get("/file/{id}", app.File)
	})

	return r
}

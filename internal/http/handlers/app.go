package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mediadl/internal/domain"
	"mediadl/internal/extractor"
	"mediadl/internal/i18n"
	"mediadl/internal/middleware"
	"mediadl/internal/service"
	"mediadl/internal/storage"
)

type App struct {
	Jobs      domain.JobRepository
	Runner    *service.Runner
	Extractor extractor.Extractor
	Files     *storage.FileStore
	Logger    zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes {"error": msg} with msg translated to the request locale.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, key i18n.Key) {
	a.json(w, code, map[string]string{"error": i18n.T(middleware.LocaleFromContext(r.Context()), key)})
}

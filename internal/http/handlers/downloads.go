package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mediadl/internal/domain"
	"mediadl/internal/i18n"
	"mediadl/internal/middleware"
	"mediadl/internal/platform"
)

type downloadRequest struct {
	URL     string                 `json:"url"`
	Format  string                 `json:"format"`
	Quality *string                `json:"quality"`
	Itag    *domain.FormatSelector `json:"itag"`
}

// maxRecent caps the limit accepted by ListDownloads.
const maxRecent = 100

// StartDownload validates the request, records a pending job and hands it to
// the runner. It answers before any extraction work happens.
func (a *App) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, i18n.MsgInvalidPayload)
		return
	}
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		a.error(w, r, http.StatusBadRequest, i18n.MsgURLRequired)
		return
	}
	u, err := platform.ParseURL(raw)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, i18n.MsgInvalidURL)
		return
	}
	format, err := domain.ParseMediaFormat(req.Format)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, i18n.MsgInvalidFormat)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	p := platform.Detect(u)
	if !platform.Downloadable(p) {
		a.json(w, http.StatusBadRequest, map[string]any{
			"error":              i18n.T(locale, i18n.MsgUnsupportedPlatform),
			"platform":           p,
			"supportedPlatforms": platform.SupportedNames,
		})
		return
	}

	in := domain.NewJob{URL: raw, Platform: p, Format: format, Locale: locale}
	if req.Quality != nil {
		in.Quality = *req.Quality
	}
	if req.Itag != nil {
		in.Itag = *req.Itag
	}
	job, err := a.Runner.Submit(r.Context(), in)
	if err != nil {
		a.Logger.Error().Err(err).Msg("download: submit failed")
		a.error(w, r, http.StatusInternalServerError, i18n.MsgStartFailed)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"downloadId": job.ID})
}

// DownloadStatus returns the full job record.
func (a *App) DownloadStatus(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, r, http.StatusNotFound, i18n.MsgDownloadNotFound)
			return
		}
		a.error(w, r, http.StatusInternalServerError, i18n.MsgUnknown)
		return
	}
	a.json(w, http.StatusOK, job)
}

// ListDownloads returns the most recent jobs, newest first.
func (a *App) ListDownloads(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.error(w, r, http.StatusBadRequest, i18n.MsgInvalidPayload)
			return
		}
		limit = min(n, maxRecent)
	}
	jobs, err := a.Jobs.ListRecent(r.Context(), limit)
	if err != nil {
		a.error(w, r, http.StatusInternalServerError, i18n.MsgUnknown)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": jobs})
}

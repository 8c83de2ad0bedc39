package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mediadl/internal/domain"
	"mediadl/internal/i18n"
	"mediadl/internal/platform"
)

type validateRequest struct {
	URL *string `json:"url"`
}

type validateResponse struct {
	IsValid   bool                  `json:"isValid"`
	Platform  domain.Platform       `json:"platform"`
	Title     *string               `json:"title"`
	Thumbnail *string               `json:"thumbnail"`
	Duration  *int                  `json:"duration"`
	Formats   []domain.FormatOption `json:"formats"`
	Supported bool                  `json:"supported"`
}

// Validate reports the platform of a URL and, when the extractor can read it,
// its metadata and selectable formats. Metadata failures are not errors: the
// fallback format table is returned instead.
func (a *App) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == nil || strings.TrimSpace(*req.URL) == "" {
		a.error(w, r, http.StatusBadRequest, i18n.MsgURLRequired)
		return
	}
	raw := strings.TrimSpace(*req.URL)

	resp := validateResponse{Platform: domain.PlatformUnknown, Formats: []domain.FormatOption{}}
	p, err := platform.DetectString(raw)
	if err == nil {
		resp.Platform = p
	}
	resp.IsValid = err == nil && platform.Downloadable(p)
	resp.Supported = platform.Supported(resp.Platform)
	if !resp.IsValid {
		a.json(w, http.StatusOK, resp)
		return
	}

	meta, err := a.Extractor.FetchMetadata(r.Context(), raw)
	if err != nil {
		a.Logger.Warn().Err(err).Str("platform", string(p)).Msg("validate: metadata unavailable")
		resp.Formats = platform.FallbackFormats()
		a.json(w, http.StatusOK, resp)
		return
	}
	if meta.Title != "" {
		resp.Title = &meta.Title
	}
	if meta.Thumbnail != "" {
		resp.Thumbnail = &meta.Thumbnail
	}
	if meta.DurationSeconds > 0 {
		resp.Duration = &meta.DurationSeconds
	}
	resp.Formats = a.Extractor.ListFormats(r.Context(), raw, meta)
	a.json(w, http.StatusOK, resp)
}

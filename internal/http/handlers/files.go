package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"mediadl/internal/domain"
	"mediadl/internal/extractor"
	"mediadl/internal/i18n"
	"mediadl/internal/service"
	"mediadl/internal/storage"
)

// File delivers the media of a completed job, either streamed live from the
// extractor or read back from the file store.
func (a *App) File(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil || job.Status != domain.JobStatusCompleted || job.DownloadURL == nil {
		a.error(w, r, http.StatusNotFound, i18n.MsgNotReady)
		return
	}
	title := storage.DefaultTitle
	if job.Title != nil {
		title = *job.Title
	}
	if a.Runner != nil && a.Runner.Mode() == service.DeliveryDisk {
		a.serveStored(w, r, job)
		return
	}
	a.serveStream(w, r, job, title)
}

func (a *App) serveStream(w http.ResponseWriter, r *http.Request, job domain.Job, title string) {
	log := a.Logger.With().Str("job_id", job.ID).Logger()
	stream, err := a.Extractor.Stream(r.Context(), job.URL, extractor.RequestForJob(job))
	if err != nil {
		log.Warn().Err(err).Msg("file: stream start failed")
		a.error(w, r, http.StatusInternalServerError, i18n.MsgStreamFailed)
		return
	}
	defer stream.Body.Close()

	ext := stream.Extension
	if ext == "" {
		ext = job.Format.Extension()
	}
	contentType := stream.ContentType
	if contentType == "" {
		contentType = job.Format.ContentType()
	}
	w.Header().Set("Content-Disposition", contentDisposition(storage.Filename(title, ext)))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, stream.Body)
	if err != nil && r.Context().Err() == nil {
		// Headers are gone; the client sees a truncated body.
		log.Error().Err(err).Int64("bytes", n).Msg("file: stream interrupted")
		return
	}
	log.Debug().Int64("bytes", n).Msg("file: streamed")
}

func (a *App) serveStored(w http.ResponseWriter, r *http.Request, job domain.Job) {
	f, err := a.Files.Open(*job.DownloadURL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, r, http.StatusNotFound, i18n.MsgFileMissing)
			return
		}
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("file: open failed")
		a.error(w, r, http.StatusInternalServerError, i18n.MsgStreamFailed)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		a.error(w, r, http.StatusInternalServerError, i18n.MsgStreamFailed)
		return
	}
	name := path.Base(*job.DownloadURL)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = job.Format.ContentType()
	}
	w.Header().Set("Content-Disposition", contentDisposition(name))
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func contentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

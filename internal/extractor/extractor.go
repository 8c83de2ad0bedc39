// Package extractor wraps the third-party libraries that understand media
// sites. The job runner and file delivery only talk to the Extractor
// interface so the backend can be swapped by configuration.
package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mediadl/internal/domain"
	"mediadl/internal/platform"
)

// Metadata is the subset of video information surfaced to clients.
type Metadata struct {
	Title           string
	Thumbnail       string
	DurationSeconds int
}

// StreamRequest describes which variant of a URL should be fetched.
type StreamRequest struct {
	Platform domain.Platform
	Format   domain.MediaFormat
	Quality  string
	Selector domain.FormatSelector
}

// RequestForJob builds the stream request matching a stored job.
func RequestForJob(job domain.Job) StreamRequest {
	return StreamRequest{
		Platform: job.Platform,
		Format:   job.Format,
		Quality:  job.StreamQuality(),
		Selector: job.Selector(),
	}
}

// WantsAudio reports whether the request resolves to an audio-only stream.
func (r StreamRequest) WantsAudio() bool {
	return r.Format.IsAudio() || strings.Contains(r.Quality, "Audio")
}

// ResolveSelector returns the yt-dlp style selector for the request.
func (r StreamRequest) ResolveSelector() string {
	if r.WantsAudio() {
		return platform.SelectorBestAudio
	}
	if sel := strings.TrimSpace(string(r.Selector)); sel != "" && sel != platform.SelectorBest {
		return sel
	}
	if platform.LimitedFormats(r.Platform) {
		return platform.SelectorBest
	}
	return platform.SelectorDefault
}

// Stream is an open media body plus how it should be labelled.
type Stream struct {
	Body        io.ReadCloser
	ContentType string
	Extension   string
}

// Extractor is implemented by every extraction backend.
type Extractor interface {
	Name() string
	FetchMetadata(ctx context.Context, url string) (Metadata, error)
	ListFormats(ctx context.Context, url string, meta Metadata) []domain.FormatOption
	Probe(ctx context.Context, url string, req StreamRequest) error
	Stream(ctx context.Context, url string, req StreamRequest) (*Stream, error)
}

// Backend names accepted by New.
const (
	BackendYtDlp   = "ytdlp"
	BackendYouTube = "youtube"
)

// Options configure backend construction.
type Options struct {
	Backend   string
	YtDlpPath string
}

// New constructs the configured backend.
func New(opts Options) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendYtDlp:
		return NewYtDlp(opts.YtDlpPath), nil
	case BackendYouTube:
		return NewYouTube(nil), nil
	default:
		return nil, fmt.Errorf("extractor: unknown backend %q", opts.Backend)
	}
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions happen from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// MediaFormat is the container requested by the client.
type MediaFormat string

const (
	FormatMP4 MediaFormat = "mp4"
	FormatMP3 MediaFormat = "mp3"
)

// ParseMediaFormat validates a client supplied format.
func ParseMediaFormat(raw string) (MediaFormat, error) {
	switch MediaFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatMP4:
		return FormatMP4, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
}

func (f MediaFormat) Extension() string {
	if f == FormatMP3 {
		return "mp3"
	}
	return "mp4"
}

func (f MediaFormat) ContentType() string {
	if f == FormatMP3 {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// IsAudio reports whether the job asks for an audio-only artifact.
func (f MediaFormat) IsAudio() bool { return f == FormatMP3 }

// FormatSelector identifies an encoded variant. Clients send either a
// yt-dlp style selector ("bestaudio") or a numeric YouTube itag.
type FormatSelector string

func (s *FormatSelector) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FormatSelector(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("itag must be a string or a number")
	}
	*s = FormatSelector(n.String())
	return nil
}

// Itag returns the numeric itag when the selector is one.
func (s FormatSelector) Itag() (int, bool) {
	n, err := strconv.Atoi(string(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Job encapsulates the lifecycle of a single download request.
type Job struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Platform    Platform        `json:"platform"`
	Format      MediaFormat     `json:"format"`
	Quality     *string         `json:"quality"`
	Itag        *FormatSelector `json:"itag"`
	Title       *string         `json:"title"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	DownloadURL *string         `json:"downloadUrl"`
	Error       *string         `json:"error"`
	Locale      string          `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewJob carries the immutable inputs captured at creation.
type NewJob struct {
	URL      string
	Platform Platform
	Format   MediaFormat
	Quality  string
	Itag     FormatSelector
	Locale   string
}

// JobUpdate is the partial field set accepted by JobRepository.Update.
// Nil fields are left untouched.
type JobUpdate struct {
	Status      *JobStatus
	Progress    *int
	Title       *string
	DownloadURL *string
	Error       *string
}

// Apply merges u into job, last write wins.
func (u JobUpdate) Apply(job *Job) {
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.Progress != nil {
		job.Progress = *u.Progress
	}
	if u.Title != nil {
		job.Title = stringPtr(*u.Title)
	}
	if u.DownloadURL != nil {
		job.DownloadURL = stringPtr(*u.DownloadURL)
	}
	if u.Error != nil {
		job.Error = stringPtr(*u.Error)
	}
}

// StreamQuality returns the quality label or "" when none was chosen.
func (j Job) StreamQuality() string {
	if j.Quality == nil {
		return ""
	}
	return *j.Quality
}

// Selector returns the format selector or "" when none was chosen.
func (j Job) Selector() FormatSelector {
	if j.Itag == nil {
		return ""
	}
	return *j.Itag
}

func stringPtr(v string) *string { return &v }

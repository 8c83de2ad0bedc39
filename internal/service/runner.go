// Package service drives download jobs from pending to a terminal state.
package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mediadl/internal/domain"
	"mediadl/internal/extractor"
	"mediadl/internal/i18n"
	"mediadl/internal/storage"
)

// DeliveryMode selects what a completed job points at.
type DeliveryMode string

const (
	// DeliveryStream records the source URL; bytes are fetched on demand.
	DeliveryStream DeliveryMode = "stream"
	// DeliveryDisk downloads the media during the job and records the file key.
	DeliveryDisk DeliveryMode = "disk"
)

// ParseDeliveryMode validates a configured mode.
func ParseDeliveryMode(raw string) (DeliveryMode, error) {
	switch DeliveryMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DeliveryStream:
		return DeliveryStream, nil
	case DeliveryDisk:
		return DeliveryDisk, nil
	default:
		return "", fmt.Errorf("unknown delivery mode %q", raw)
	}
}

// Progress checkpoints written while a job runs.
const (
	ProgressStarted  = 10
	ProgressMetadata = 40
	ProgressSaving   = 60
	ProgressDone     = 100

	DefaultJobTimeout = 5 * time.Minute
)

// Runner owns the background task of every job it submits. While a task
// runs it is the only writer of that job's mutable fields.
type Runner struct {
	jobs      domain.JobRepository
	extractor extractor.Extractor
	files     *storage.FileStore
	mode      DeliveryMode
	timeout   time.Duration
	logger    zerolog.Logger

	wg sync.WaitGroup
}

// Options configure a Runner.
type Options struct {
	Jobs       domain.JobRepository
	Extractor  extractor.Extractor
	Files      *storage.FileStore
	Mode       DeliveryMode
	JobTimeout time.Duration
	Logger     zerolog.Logger
}

// NewRunner validates options and builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("runner: job repository is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("runner: extractor is required")
	}
	if opts.Mode == "" {
		opts.Mode = DeliveryStream
	}
	if opts.Mode == DeliveryDisk && opts.Files == nil {
		return nil, errors.New("runner: disk delivery requires a file store")
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = DefaultJobTimeout
	}
	return &Runner{
		jobs:      opts.Jobs,
		extractor: opts.Extractor,
		files:     opts.Files,
		mode:      opts.Mode,
		timeout:   opts.JobTimeout,
		logger:    opts.Logger,
	}, nil
}

// Mode reports the configured delivery mode.
func (r *Runner) Mode() DeliveryMode { return r.mode }

// Submit creates the job and starts its task without waiting for it. The
// task is detached from ctx: a client going away does not stop it.
func (r *Runner) Submit(ctx context.Context, in domain.NewJob) (domain.Job, error) {
	job, err := r.jobs.Create(ctx, in)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}
	r.logger.Info().Str("job_id", job.ID).Str("platform", string(job.Platform)).Str("format", string(job.Format)).Msg("runner: job submitted")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Str("job_id", job.ID).Interface("panic", rec).Msg("runner: job panicked")
				if cur, err := r.jobs.Get(context.Background(), job.ID); err == nil && !cur.Status.IsTerminal() {
					r.fail(job, i18n.T(job.Locale, i18n.MsgUnknown))
				}
			}
		}()
		r.Run(context.WithoutCancel(ctx), job)
	}()
	return job, nil
}

// Wait blocks until every submitted task has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives job synchronously through every step. Each step is written to
// the repository before the next starts.
func (r *Runner) Run(ctx context.Context, job domain.Job) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	log := r.logger.With().Str("job_id", job.ID).Logger()
	start := time.Now()

	if err := r.update(ctx, job.ID, domain.JobUpdate{
		Status:   statusPtr(domain.JobStatusProcessing),
		Progress: intPtr(ProgressStarted),
	}); err != nil {
		log.Error().Err(err).Msg("runner: mark processing failed")
		return
	}

	meta, err := r.extractor.FetchMetadata(ctx, job.URL)
	if err != nil {
		log.Warn().Err(err).Str("backend", r.extractor.Name()).Msg("runner: metadata fetch failed")
		r.fail(job, failureMessage(job.Locale, err, i18n.MsgMetadataFailed))
		return
	}
	title := storage.CleanTitle(meta.Title)
	if err := r.update(ctx, job.ID, domain.JobUpdate{Progress: intPtr(ProgressMetadata)}); err != nil {
		log.Error().Err(err).Msg("runner: progress update failed")
		return
	}

	req := extractor.RequestForJob(job)
	if err := r.extractor.Probe(ctx, job.URL, req); err != nil {
		log.Warn().Err(err).Str("selector", req.ResolveSelector()).Msg("runner: format probe failed")
		r.fail(job, failureMessage(job.Locale, err, i18n.MsgProbeFailed))
		return
	}

	downloadURL := job.URL
	if r.mode == DeliveryDisk {
		key, err := r.saveToDisk(ctx, job, req, title)
		if err != nil {
			log.Warn().Err(err).Msg("runner: save to disk failed")
			r.fail(job, failureMessage(job.Locale, err, i18n.MsgSaveFailed))
			return
		}
		downloadURL = key
	}

	if err := r.update(ctx, job.ID, domain.JobUpdate{
		Status:      statusPtr(domain.JobStatusCompleted),
		Progress:    intPtr(ProgressDone),
		Title:       &title,
		DownloadURL: &downloadURL,
	}); err != nil {
		log.Error().Err(err).Msg("runner: mark completed failed")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("runner: job completed")
}

func (r *Runner) saveToDisk(ctx context.Context, job domain.Job, req extractor.StreamRequest, title string) (string, error) {
	if err := r.update(ctx, job.ID, domain.JobUpdate{Progress: intPtr(ProgressSaving)}); err != nil {
		return "", err
	}
	stream, err := r.extractor.Stream(ctx, job.URL, req)
	if err != nil {
		return "", err
	}
	defer stream.Body.Close()
	key := path.Join("downloads", job.ID, storage.Filename(title, stream.Extension))
	savedKey, n, err := r.files.Save(ctx, key, stream.Body)
	if err != nil {
		return "", err
	}
	r.logger.Debug().Str("job_id", job.ID).Str("key", savedKey).Int64("bytes", n).Msg("runner: media saved")
	return savedKey, nil
}

// fail writes the terminal failed state. It uses a fresh context so that a
// timed-out job still records why it stopped.
func (r *Runner) fail(job domain.Job, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.update(ctx, job.ID, domain.JobUpdate{
		Status: statusPtr(domain.JobStatusFailed),
		Error:  &message,
	}); err != nil {
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("runner: mark failed failed")
	}
}

func (r *Runner) update(ctx context.Context, id string, u domain.JobUpdate) error {
	_, err := r.jobs.Update(ctx, id, u)
	return err
}

// failureMessage picks the template for a classified extractor error, or
// the step's generic template when the error carries no useful kind.
func failureMessage(locale string, err error, fallback i18n.Key) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return i18n.T(locale, fallback)
	}
	switch extractor.KindOf(err) {
	case extractor.KindProtected:
		return i18n.T(locale, i18n.MsgProtected)
	case extractor.KindUnavailable:
		return i18n.T(locale, i18n.MsgUnavailable)
	case extractor.KindPrivate:
		return i18n.T(locale, i18n.MsgPrivate)
	case extractor.KindLoginRequired:
		return i18n.T(locale, i18n.MsgLoginRequired)
	case extractor.KindUnsupported:
		return i18n.T(locale, i18n.MsgUnsupportedURL)
	default:
		return i18n.T(locale, fallback)
	}
}

func statusPtr(s domain.JobStatus) *domain.JobStatus { return &s }

func intPtr(v int) *int { return &v }

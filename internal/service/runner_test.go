package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediadl/internal/adapter/repo"
	"mediadl/internal/domain"
	"mediadl/internal/extractor"
	"mediadl/internal/i18n"
	"mediadl/internal/storage"
)

type stubExtractor struct {
	meta       extractor.Metadata
	metaErr    error
	probeErr   error
	streamErr  error
	body       string
	probed     []extractor.StreamRequest
	mu         sync.Mutex
	blockUntil chan struct{}
}

func (s *stubExtractor) Name() string { return "stub" }

func (s *stubExtractor) FetchMetadata(ctx context.Context, url string) (extractor.Metadata, error) {
	if s.blockUntil != nil {
		<-s.blockUntil
	}
	return s.meta, s.metaErr
}

func (s *stubExtractor) ListFormats(ctx context.Context, url string, meta extractor.Metadata) []domain.FormatOption {
	return nil
}

func (s *stubExtractor) Probe(ctx context.Context, url string, req extractor.StreamRequest) error {
	s.mu.Lock()
	s.probed = append(s.probed, req)
	s.mu.Unlock()
	return s.probeErr
}

func (s *stubExtractor) Stream(ctx context.Context, url string, req extractor.StreamRequest) (*extractor.Stream, error) {
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return &extractor.Stream{Body: io.NopCloser(strings.NewReader(s.body)), ContentType: "video/mp4", Extension: "mp4"}, nil
}

// recordingRepo captures every update so tests can check the ordering
// guarantees of a run.
type recordingRepo struct {
	*repo.JobRepositoryMemory
	mu      sync.Mutex
	history []domain.Job
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{JobRepositoryMemory: repo.NewJobRepository()}
}

func (r *recordingRepo) Update(ctx context.Context, id string, u domain.JobUpdate) (domain.Job, error) {
	job, err := r.JobRepositoryMemory.Update(ctx, id, u)
	if err == nil {
		r.mu.Lock()
		r.history = append(r.history, job)
		r.mu.Unlock()
	}
	return job, err
}

func (r *recordingRepo) snapshots() []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Job(nil), r.history...)
}

func newTestRunner(t *testing.T, x extractor.Extractor, jobs domain.JobRepository, mode DeliveryMode, files *storage.FileStore) *Runner {
	t.Helper()
	r, err := NewRunner(Options{Jobs: jobs, Extractor: x, Files: files, Mode: mode, JobTimeout: 5 * time.Second, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func submitAndWait(t *testing.T, r *Runner, in domain.NewJob) domain.Job {
	t.Helper()
	job, err := r.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("Submit returned status %s, want pending", job.Status)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	got, err := r.jobs.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return got
}

func assertLifecycle(t *testing.T, history []domain.Job) {
	t.Helper()
	order := map[domain.JobStatus]int{
		domain.JobStatusPending:    0,
		domain.JobStatusProcessing: 1,
		domain.JobStatusCompleted:  2,
		domain.JobStatusFailed:     2,
	}
	prevStatus := domain.JobStatusPending
	prevProgress := 0
	terminalWrites := 0
	for i, snap := range history {
		if order[snap.Status] < order[prevStatus] {
			t.Fatalf("status went backwards at update %d: %s -> %s", i, prevStatus, snap.Status)
		}
		if prevStatus.IsTerminal() {
			t.Fatalf("update %d after terminal status %s", i, prevStatus)
		}
		if snap.Status == domain.JobStatusProcessing && snap.Progress < prevProgress {
			t.Fatalf("progress decreased at update %d: %d -> %d", i, prevProgress, snap.Progress)
		}
		if snap.Status.IsTerminal() {
			terminalWrites++
		}
		prevStatus = snap.Status
		prevProgress = snap.Progress
	}
	if terminalWrites != 1 {
		t.Fatalf("expected exactly one terminal write, got %d", terminalWrites)
	}
}

func TestRunCompletesInStreamMode(t *testing.T) {
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "Never Gonna: Give (You) Up!", DurationSeconds: 213}}
	r := newTestRunner(t, x, jobs, DeliveryStream, nil)

	url := "https://www.youtube.com/watch?v=abc"
	got := submitAndWait(t, r, domain.NewJob{URL: url, Platform: domain.PlatformYouTube, Format: domain.FormatMP4, Itag: "worst[height>=480]"})

	if got.Status != domain.JobStatusCompleted || got.Progress != 100 {
		t.Fatalf("unexpected terminal state: %s %d", got.Status, got.Progress)
	}
	if got.Title == nil || *got.Title != "Never Gonna Give You Up" {
		t.Fatalf("unexpected title: %v", got.Title)
	}
	if got.DownloadURL == nil || *got.DownloadURL != url {
		t.Fatalf("expected downloadUrl to be source url, got %v", got.DownloadURL)
	}
	if got.Error != nil {
		t.Fatalf("unexpected error field: %q", *got.Error)
	}
	if len(x.probed) != 1 || x.probed[0].ResolveSelector() != "worst[height>=480]" {
		t.Fatalf("unexpected probe requests: %+v", x.probed)
	}
	assertLifecycle(t, jobs.snapshots())
}

func TestRunFailsOnMetadataError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		locale string
		want   string
	}{
		{
			name: "generic error uses metadata template",
			err:  errors.New("connection reset"),
			want: i18n.T("en", i18n.MsgMetadataFailed),
		},
		{
			name:   "classified private video in french",
			err:    &extractor.Error{Kind: extractor.KindPrivate, Op: "metadata", Err: errors.New("Private video")},
			locale: "fr",
			want:   "Cette vidéo est privée et ne peut pas être téléchargée.",
		},
		{
			name: "unavailable from stderr heuristics",
			err:  errors.New("ERROR: [youtube] abc: Video unavailable"),
			want: i18n.T("en", i18n.MsgUnavailable),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jobs := newRecordingRepo()
			x := &stubExtractor{metaErr: tc.err}
			r := newTestRunner(t, x, jobs, DeliveryStream, nil)
			got := submitAndWait(t, r, domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP4, Locale: tc.locale})
			if got.Status != domain.JobStatusFailed {
				t.Fatalf("status = %s, want failed", got.Status)
			}
			if got.Error == nil || *got.Error != tc.want {
				t.Fatalf("error = %v, want %q", got.Error, tc.want)
			}
			if got.DownloadURL != nil || got.Title != nil {
				t.Fatalf("failed job must not carry downloadUrl/title: %+v", got)
			}
			if len(x.probed) != 0 {
				t.Fatal("probe must not run after metadata failure")
			}
			assertLifecycle(t, jobs.snapshots())
		})
	}
}

func TestRunFailsOnProbeError(t *testing.T) {
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "t"}, probeErr: errors.New("exit status 1")}
	r := newTestRunner(t, x, jobs, DeliveryStream, nil)
	got := submitAndWait(t, r, domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP4})
	if got.Status != domain.JobStatusFailed || got.Error == nil || *got.Error != i18n.T("en", i18n.MsgProbeFailed) {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Progress != ProgressMetadata {
		t.Fatalf("progress = %d, want %d", got.Progress, ProgressMetadata)
	}
	assertLifecycle(t, jobs.snapshots())
}

func TestRunSavesToDisk(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "Café clip"}, body: "media-bytes"}
	r := newTestRunner(t, x, jobs, DeliveryDisk, files)

	got := submitAndWait(t, r, domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP4})
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, error = %v", got.Status, got.Error)
	}
	wantKey := "downloads/" + got.ID + "/Cafe clip.mp4"
	if got.DownloadURL == nil || *got.DownloadURL != wantKey {
		t.Fatalf("downloadUrl = %v, want %q", got.DownloadURL, wantKey)
	}
	f, err := files.Open(wantKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "media-bytes" {
		t.Fatalf("stored %q", data)
	}
	assertLifecycle(t, jobs.snapshots())
}

func TestRunDiskStreamFailure(t *testing.T) {
	files, _ := storage.NewFileStore(t.TempDir())
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "t"}, streamErr: errors.New("socket closed")}
	r := newTestRunner(t, x, jobs, DeliveryDisk, files)
	got := submitAndWait(t, r, domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP3})
	if got.Status != domain.JobStatusFailed || *got.Error != i18n.T("en", i18n.MsgSaveFailed) {
		t.Fatalf("unexpected result: %+v", got)
	}
	assertLifecycle(t, jobs.snapshots())
}

func TestSubmitReturnsBeforeTaskFinishes(t *testing.T) {
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "slow"}, blockUntil: make(chan struct{})}
	r := newTestRunner(t, x, jobs, DeliveryStream, nil)

	job, err := r.Submit(context.Background(), domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP4})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait returned %v while task was blocked", err)
	}
	current, _ := jobs.Get(context.Background(), job.ID)
	if current.Status.IsTerminal() {
		t.Fatalf("job finished while extractor was blocked: %s", current.Status)
	}

	close(x.blockUntil)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	final, _ := jobs.Get(context.Background(), job.ID)
	if final.Status != domain.JobStatusCompleted {
		t.Fatalf("final status = %s", final.Status)
	}
}

func TestSubmitSurvivesCallerCancellation(t *testing.T) {
	jobs := newRecordingRepo()
	x := &stubExtractor{meta: extractor.Metadata{Title: "t"}}
	r := newTestRunner(t, x, jobs, DeliveryStream, nil)
	ctx, cancel := context.WithCancel(context.Background())
	job, err := r.Submit(ctx, domain.NewJob{URL: "https://youtu.be/abc", Platform: domain.PlatformYouTube, Format: domain.FormatMP4})
	cancel()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = r.Wait(context.Background())
	final, _ := jobs.Get(context.Background(), job.ID)
	if final.Status != domain.JobStatusCompleted {
		t.Fatalf("final status = %s, error = %v", final.Status, final.Error)
	}
}

func TestNewRunnerValidation(t *testing.T) {
	if _, err := NewRunner(Options{Extractor: &stubExtractor{}}); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewRunner(Options{Jobs: repo.NewJobRepository()}); err == nil {
		t.Fatal("expected error without extractor")
	}
	if _, err := NewRunner(Options{Jobs: repo.NewJobRepository(), Extractor: &stubExtractor{}, Mode: DeliveryDisk}); err == nil {
		t.Fatal("expected error for disk mode without file store")
	}
}

func TestParseDeliveryMode(t *testing.T) {
	if m, err := ParseDeliveryMode(""); err != nil || m != DeliveryStream {
		t.Fatalf("empty mode = %q, %v", m, err)
	}
	if m, err := ParseDeliveryMode("DISK"); err != nil || m != DeliveryDisk {
		t.Fatalf("disk mode = %q, %v", m, err)
	}
	if _, err := ParseDeliveryMode("ftp"); err == nil {
		t.Fatal("expected error")
	}
}

package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediadl/internal/domain"
)

// DefaultRecentLimit is used when ListRecent receives a non-positive limit.
const DefaultRecentLimit = 10

// JobRepositoryMemory implements domain.JobRepository on a process-local map.
// Jobs live as long as the process; nothing is ever evicted.
type JobRepositoryMemory struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

// NewJobRepository creates an empty in-memory job repository.
func NewJobRepository() *JobRepositoryMemory {
	return &JobRepositoryMemory{
		jobs: make(map[string]*domain.Job),
		now:  time.Now,
	}
}

// Create stores a new pending job and returns a copy of it.
func (r *JobRepositoryMemory) Create(ctx context.Context, in domain.NewJob) (domain.Job, error) {
	job := &domain.Job{
		ID:       uuid.NewString(),
		URL:      in.URL,
		Platform: in.Platform,
		Format:   in.Format,
		Status:   domain.JobStatusPending,
		Progress: 0,
		Locale:   in.Locale,
	}
	if in.Quality != "" {
		q := in.Quality
		job.Quality = &q
	}
	if in.Itag != "" {
		sel := in.Itag
		job.Itag = &sel
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if _, taken := r.jobs[job.ID]; !taken {
			break
		}
		job.ID = uuid.NewString()
	}
	job.CreatedAt = r.now()
	r.jobs[job.ID] = job
	return clone(job), nil
}

// Get fetches a job by its identifier.
func (r *JobRepositoryMemory) Get(ctx context.Context, id string) (domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return clone(job), nil
}

// Update merges the non-nil fields of u into the stored job.
func (r *JobRepositoryMemory) Update(ctx context.Context, id string, u domain.JobUpdate) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	u.Apply(job)
	return clone(job), nil
}

// ListRecent returns up to limit jobs, newest first.
func (r *JobRepositoryMemory) ListRecent(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	r.mu.RLock()
	items := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		items = append(items, clone(job))
	}
	r.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// clone copies the job including the pointed-to optional fields so callers
// never alias the stored record.
func clone(job *domain.Job) domain.Job {
	out := *job
	out.Quality = copyString(job.Quality)
	out.Title = copyString(job.Title)
	out.DownloadURL = copyString(job.DownloadURL)
	out.Error = copyString(job.Error)
	if job.Itag != nil {
		sel := *job.Itag
		out.Itag = &sel
	}
	return out
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

var _ domain.JobRepository = (*JobRepositoryMemory)(nil)

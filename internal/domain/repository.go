package domain

import "context"

// JobRepository defines persistence for job entities.
type JobRepository interface {
	Create(ctx context.Context, in NewJob) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, id string, u JobUpdate) (Job, error)
	ListRecent(ctx context.Context, limit int) ([]Job, error)
}

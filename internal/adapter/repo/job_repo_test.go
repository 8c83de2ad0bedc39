package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediadl/internal/domain"
)

func TestCreateStartsPending(t *testing.T) {
	r := NewJobRepository()
	in := domain.NewJob{
		URL:      "https://www.youtube.com/watch?v=abc",
		Platform: domain.PlatformYouTube,
		Format:   domain.FormatMP4,
		Quality:  "720p HD",
		Itag:     "worst[height>=720]",
	}
	job, err := r.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated id")
	}
	if job.Status != domain.JobStatusPending || job.Progress != 0 {
		t.Fatalf("unexpected initial state: status=%s progress=%d", job.Status, job.Progress)
	}
	if job.Title != nil || job.DownloadURL != nil || job.Error != nil {
		t.Fatalf("expected nil title/downloadUrl/error, got %#v", job)
	}
	if job.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}

	got, err := r.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != job.ID || got.URL != in.URL || got.Format != in.Format {
		t.Fatalf("round trip mismatch: got %#v want input %#v", got, in)
	}
	if got.StreamQuality() != "720p HD" || got.Selector() != "worst[height>=720]" {
		t.Fatalf("optional inputs lost: quality=%q itag=%q", got.StreamQuality(), got.Selector())
	}
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	r := NewJobRepository()
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		job, _ := r.Create(context.Background(), domain.NewJob{URL: "https://youtu.be/x", Format: domain.FormatMP3})
		if _, dup := seen[job.ID]; dup {
			t.Fatalf("duplicate id %s", job.ID)
		}
		seen[job.ID] = struct{}{}
	}
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	r := NewJobRepository()
	if _, err := r.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	status := domain.JobStatusProcessing
	if _, err := r.Update(context.Background(), "missing", domain.JobUpdate{Status: &status}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestUpdateMergesOnlyGivenFields(t *testing.T) {
	r := NewJobRepository()
	job, _ := r.Create(context.Background(), domain.NewJob{URL: "https://youtu.be/x", Format: domain.FormatMP4})

	status := domain.JobStatusProcessing
	progress := 10
	updated, err := r.Update(context.Background(), job.ID, domain.JobUpdate{Status: &status, Progress: &progress})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != status || updated.Progress != 10 {
		t.Fatalf("unexpected update result: %#v", updated)
	}

	title := "Song"
	updated, _ = r.Update(context.Background(), job.ID, domain.JobUpdate{Title: &title})
	if updated.Status != status || updated.Progress != 10 {
		t.Fatalf("untouched fields changed: %#v", updated)
	}
	if updated.Title == nil || *updated.Title != "Song" {
		t.Fatalf("title not merged: %#v", updated.Title)
	}
}

func TestReturnedJobsDoNotAliasStore(t *testing.T) {
	r := NewJobRepository()
	job, _ := r.Create(context.Background(), domain.NewJob{URL: "https://youtu.be/x", Format: domain.FormatMP4})
	title := "original"
	got, _ := r.Update(context.Background(), job.ID, domain.JobUpdate{Title: &title})
	*got.Title = "mutated"

	again, _ := r.Get(context.Background(), job.ID)
	if *again.Title != "original" {
		t.Fatalf("store was mutated through returned copy: %q", *again.Title)
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	r := NewJobRepository()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	var ids []string
	for i := 0; i < 5; i++ {
		job, _ := r.Create(context.Background(), domain.NewJob{URL: "https://youtu.be/x", Format: domain.FormatMP4})
		ids = append(ids, job.ID)
	}

	items, err := r.ListRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []string{ids[4], ids[3], ids[2]}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}

	again, _ := r.ListRecent(context.Background(), 3)
	for i := range items {
		if again[i].ID != items[i].ID {
			t.Fatalf("ListRecent not stable at %d: %s vs %s", i, again[i].ID, items[i].ID)
		}
	}
}

func TestListRecentDefaultsLimit(t *testing.T) {
	r := NewJobRepository()
	for i := 0; i < DefaultRecentLimit+5; i++ {
		_, _ = r.Create(context.Background(), domain.NewJob{URL: "https://youtu.be/x", Format: domain.FormatMP4})
	}
	items, _ := r.ListRecent(context.Background(), 0)
	if len(items) != DefaultRecentLimit {
		t.Fatalf("expected %d items, got %d", DefaultRecentLimit, len(items))
	}
}

package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/service"
)

// EngagementSyncJob periodically refreshes like/comment/reach counters
// for recently published posts. Insight fetches are best-effort, so a
// failing account never blocks the sweep.
type EngagementSyncJob struct {
	pr repository.PostRepository
	ps service.PostService
}

func NewEngagementSyncJob(pr repository.PostRepository, ps service.PostService) *EngagementSyncJob {
	return &EngagementSyncJob{
		pr: pr,
		ps: ps,
	}
}

func (c *EngagementSyncJob) SyncEngagement() {
	ctx := context.Background()

	// Posts older than 90 days have settled; skip them.
	since := time.Now().AddDate(0, -3, 0)

	posts, err := c.pr.ListPublishedSince(ctx, since)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.ps.SyncEngagement(ctx, post); err != nil {
				slog.Info("Unable to sync engagement", "post_id", post.ID, "error", err.Error())
			}
		}(post)
	}

	wg.Wait()
}

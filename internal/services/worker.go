package services

import (
	"context"
	"sync"
	"time"

	"github.com/tripmesh/concierge/internal/logger"
)

// LaunchWorker launches a goroutine that polls for due reply jobs and
// processes them. Replies also get processed opportunistically by request
// handlers; this loop just guarantees a bounded pickup latency when traffic
// is quiet.
func LaunchWorker(ctx context.Context, wg *sync.WaitGroup, queue *ReplyQueue) {
	defer wg.Done()
	const jobLimit = 10
	const idleWait = time.Second

	logger.Info("Reply worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reply worker received shutdown signal, stopping...")
			return
		default:
		}

		stats, err := queue.ProcessDue(ctx, jobLimit)
		if err != nil {
			logger.Errorf("Reply worker error processing jobs: %v", err)
			// Wait before retrying to avoid spamming logs on persistent DB errors
			time.Sleep(idleWait)
			continue
		}

		if stats.Claimed == 0 {
			time.Sleep(idleWait)
			continue
		}

		logger.InfoWithFields("Reply worker processed batch", map[string]interface{}{
			"claimed":   stats.Claimed,
			"done":      stats.Done,
			"failed":    stats.Failed,
			"cancelled": stats.Cancelled,
		})
	}
}

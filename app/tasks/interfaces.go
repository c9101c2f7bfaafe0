package tasks

import (
	"context"

	"github.com/lysyi3m/curator/app/ingest"
)

// TaskSchedulerInterface is what the application needs from the scheduler:
// lifecycle control and ad hoc task submission.
//
//	scheduler, err := NewScheduler(orchestrator, feedRepo, sourceLoader, "@every 30m", 2)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshFeedsTask(orchestrator, userID))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Runner is satisfied by *ingest.Orchestrator.
type Runner interface {
	RunAll(ctx context.Context) (*ingest.Result, error)
	RunForUser(ctx context.Context, userID string) (*ingest.Result, error)
}

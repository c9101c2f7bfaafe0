package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/curator/app/ingest"
)

const scopeAll = "all"

// RefreshFeedsTask runs one ingestion pass, system-wide when UserID is empty.
type RefreshFeedsTask struct {
	Task
	UserID string
	Result *ingest.Result
	runner Runner
}

func NewRefreshFeedsTask(runner Runner, userID string) *RefreshFeedsTask {
	scope := scopeAll
	if userID != "" {
		scope = "user:" + userID
	}

	return &RefreshFeedsTask{
		Task:   NewTask(TaskTypeRefreshFeeds, scope),
		UserID: userID,
		runner: runner,
	}
}

func (t *RefreshFeedsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var (
		result *ingest.Result
		err    error
	)
	if t.UserID == "" {
		result, err = t.runner.RunAll(ctx)
	} else {
		result, err = t.runner.RunForUser(ctx, t.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh feeds: %w", err)
	}

	t.Result = result

	slog.Info("Task completed",
		"type", "RefreshFeeds",
		"scope", t.Scope,
		"duration", t.GetDuration(),
		"new", result.Count,
		"errors", len(result.Errors))

	return nil
}

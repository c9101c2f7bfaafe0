package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/feed"
)

// SyncSourcesTask upserts subscriptions declared in the feeds directory.
// Entries marked disabled are deactivated if they exist.
type SyncSourcesTask struct {
	Task
	loader   *feed.SourceLoader
	feedRepo database.FeedRepository
}

func NewSyncSourcesTask(loader *feed.SourceLoader, feedRepo database.FeedRepository) *SyncSourcesTask {
	return &SyncSourcesTask{
		Task:     NewTask(TaskTypeSyncSources, scopeAll),
		loader:   loader,
		feedRepo: feedRepo,
	}
}

func (t *SyncSourcesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	files, err := t.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	synced := 0
	disabled := 0
	for _, file := range files {
		for _, sub := range file.Feeds {
			if !sub.IsEnabled() {
				if err := t.deactivate(ctx, file.UserID, sub.URL); err != nil {
					return err
				}
				disabled++
				continue
			}

			_, err := t.feedRepo.Subscribe(ctx, database.FeedSource{
				UserID:   file.UserID,
				URL:      sub.URL,
				Name:     sub.Name,
				Category: sub.Category,
			})
			if err != nil {
				return fmt.Errorf("failed to sync %s for %s: %w", sub.URL, file.UserID, err)
			}
			synced++
		}
	}

	slog.Info("Task completed",
		"type", "SyncSources",
		"files", len(files),
		"synced", synced,
		"disabled", disabled,
		"duration", t.GetDuration())

	return nil
}

func (t *SyncSourcesTask) deactivate(ctx context.Context, userID, url string) error {
	sources, err := t.feedRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list feeds for %s: %w", userID, err)
	}

	for _, src := range sources {
		if src.URL != url || !src.Active {
			continue
		}
		if err := t.feedRepo.Unsubscribe(ctx, userID, src.ID); err != nil {
			return fmt.Errorf("failed to deactivate %s for %s: %w", url, userID, err)
		}
	}

	return nil
}

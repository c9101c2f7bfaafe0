package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize   = 100
	taskTimeout = 15 * time.Minute
)

// Scheduler runs queued tasks on a small worker pool and triggers
// system-wide refreshes on a cron spec. An empty spec disables the trigger.
type Scheduler struct {
	runner      Runner
	feedRepo    database.FeedRepository
	loader      *feed.SourceLoader
	cron        *cron.Cron
	refreshSpec string
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(runner Runner, feedRepo database.FeedRepository, loader *feed.SourceLoader, refreshSpec string, workerCount int) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount <= 0 {
		workerCount = 1
	}

	logger := cronLogger{}
	s := &Scheduler{
		runner:   runner,
		feedRepo: feedRepo,
		loader:   loader,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		refreshSpec: refreshSpec,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}

	if refreshSpec != "" {
		if _, err := s.cron.AddFunc(refreshSpec, s.scheduledRefresh); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", refreshSpec, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if s.loader != nil {
		if err := s.EnqueueTask(NewSyncSourcesTask(s.loader, s.feedRepo)); err != nil {
			slog.Warn("Failed to enqueue SyncSourcesTask", "error", err)
		}
	}

	s.cron.Start()

	if s.refreshSpec != "" {
		slog.Info("Refresh schedule active", "spec", s.refreshSpec, "next", s.NextRefresh())
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// NextRefresh returns the next scheduled system-wide run, or the zero time.
func (s *Scheduler) NextRefresh() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// scheduledRefresh runs inside the cron goroutine so that SkipIfStillRunning
// keeps scheduled runs from overlapping. A failed run is not retried; the next
// tick picks up whatever it missed.
func (s *Scheduler) scheduledRefresh() {
	task := NewRefreshFeedsTask(s.runner, "")
	task.Start()

	ctx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Scheduled refresh failed", "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := min(time.Duration(1<<uint(task.GetRetryCount()-1))*time.Second, 30*time.Second)

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "scope", task.GetScope(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}

// cronLogger routes cron's logr-style calls to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"

	"go.uber.org/zap"
)

const (
	DefaultInterval  = time.Minute
	DefaultBatchSize = 100
)

type OverdueSource interface {
	OverdueTasks(ctx context.Context, limit int) ([]*task.Task, error)
}

// OverdueWorker periodically reports unfinished tasks that are past
// their deadline. Overdue is derived, so it never changes a task.
type OverdueWorker struct {
	source    OverdueSource
	interval  time.Duration
	batchSize int
}

func NewOverdueWorker(source OverdueSource, interval time.Duration, batchSize int) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OverdueWorker{
		source:    source,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: overdue check started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				logger.Warn("Worker: overdue check failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Worker: overdue check stopping")
			return
		}
	}
}

// Check runs one pass and returns the overdue tasks it found.
func (w *OverdueWorker) Check(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	tasks, err := w.source.OverdueTasks(ctx, w.batchSize)
	if err != nil {
		return nil, fmt.Errorf("get overdue tasks: %w", err)
	}

	for _, t := range tasks {
		logger.Warn("Worker: task is overdue",
			zap.String("task_id", t.ID.String()),
			zap.String("title", t.Title),
			zap.Timep("due_date", t.DueDate))
	}

	logger.Info("Worker: overdue check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("overdue", len(tasks)))

	return tasks, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/clock"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	rep "todoTracker/internal/repository"
	"todoTracker/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService is the only way to change tasks. It keeps CompletedAt in
// step with Status on every mutation path.
type TaskService struct {
	repo  TaskRepository
	clock clock.Clock
	newID func() uuid.UUID
}

type Option func(*TaskService)

func WithClock(c clock.Clock) Option {
	return func(s *TaskService) {
		s.clock = c
	}
}

func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *TaskService) {
		s.newID = gen
	}
}

func NewTaskService(repo TaskRepository, options ...Option) *TaskService {
	s := &TaskService{
		repo:  repo,
		clock: clock.Real{},
		newID: uuid.New,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check: %w", err)
	}
	return nil
}

func (s *TaskService) Now() time.Time {
	return s.clock.Now()
}

func (s *TaskService) AddTask(ctx context.Context, draft task.Draft) (*task.Task, error) {
	if !draft.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("unknown priority %q", draft.Priority))
	}
	if !draft.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", draft.Status))
	}

	now := s.clock.Now()
	newTask := &task.Task{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      draft.Status,
		DueDate:     draft.DueDate,
		CreatedAt:   now,
	}
	if newTask.IsCompleted() {
		newTask.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", newTask.ID.String()),
		zap.String("status", string(newTask.Status)))

	return newTask.Clone(), nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err, id, "get task")
	}
	return t, nil
}

// ListTasks returns the canonical collection, newest first.
func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask merges patch into the task. CompletedAt is set when the patch
// moves the task into completed, cleared when the patch names any other
// status, and left alone when the patch has no status.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", *patch.Status))
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("unknown priority %q", *patch.Priority))
	}

	now := s.clock.Now()
	updated, err := s.repo.Modify(ctx, id, func(t *task.Task) {
		wasCompleted := t.IsCompleted()
		patch.Apply(t)

		if patch.Status == nil {
			return
		}
		if *patch.Status == task.StatusCompleted {
			if !wasCompleted {
				t.CompletedAt = &now
			}
			return
		}
		t.CompletedAt = nil
	})
	if err != nil {
		return nil, s.wrapRepoError(err, id, "update task")
	}

	logger.Info("Service: task updated",
		zap.String("task_id", id.String()),
		zap.String("status", string(updated.Status)))

	return updated, nil
}

// ToggleComplete flips between completed and pending. An in_progress task
// becomes completed, and toggling it back yields pending, not in_progress.
func (s *TaskService) ToggleComplete(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	now := s.clock.Now()
	toggled, err := s.repo.Modify(ctx, id, func(t *task.Task) {
		if t.IsCompleted() {
			t.Status = task.StatusPending
			t.CompletedAt = nil
			return
		}
		t.Status = task.StatusCompleted
		t.CompletedAt = &now
	})
	if err != nil {
		return nil, s.wrapRepoError(err, id, "toggle task")
	}

	logger.Info("Service: task toggled",
		zap.String("task_id", id.String()),
		zap.String("status", string(toggled.Status)))

	return toggled, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapRepoError(err, id, "delete task")
	}

	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

// ViewTasks returns the canonical collection filtered and sorted.
func (s *TaskService) ViewTasks(ctx context.Context, filters task.Filters, sort task.Sort) ([]*task.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return view.Select(tasks, filters, sort), nil
}

func (s *TaskService) Stats(ctx context.Context) (view.Stats, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return view.Stats{}, err
	}
	return view.Summarize(tasks, s.clock.Now()), nil
}

// OverdueTasks returns at most limit unfinished tasks past their deadline.
func (s *TaskService) OverdueTasks(ctx context.Context, limit int) ([]*task.Task, error) {
	tasks, err := s.repo.GetTasksDueBefore(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("get overdue tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) wrapRepoError(err error, id uuid.UUID, op string) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: task not found",
			zap.String("operation", op),
			zap.String("target_id", id.String()))
		return NewNotFound("task", id.String(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

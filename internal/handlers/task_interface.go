package handlers

import (
	"context"
	"time"

	"todoTracker/internal/models/task"
	"todoTracker/internal/view"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(context.Context) error
	Now() time.Time
	AddTask(context.Context, task.Draft) (*task.Task, error)
	GetTaskByID(context.Context, uuid.UUID) (*task.Task, error)
	ViewTasks(context.Context, task.Filters, task.Sort) ([]*task.Task, error)
	UpdateTask(context.Context, uuid.UUID, task.Patch) (*task.Task, error)
	ToggleComplete(context.Context, uuid.UUID) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	Stats(context.Context) (view.Stats, error)
}

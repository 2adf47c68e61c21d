package service

import (
	"context"
	"time"

	"todoTracker/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
	Modify(context.Context, uuid.UUID, func(*task.Task)) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	GetTasksDueBefore(context.Context, time.Time, int) ([]*task.Task, error)
}

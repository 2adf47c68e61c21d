package dto

import (
	"time"

	"todoTracker/internal/models/task"
	"todoTracker/internal/view"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    task.Priority `json:"priority"`
	Status      task.Status   `json:"status"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// ToDraft fills in the form defaults: medium priority, pending status.
func (r CreateTaskRequest) ToDraft() task.Draft {
	draft := task.Draft{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		DueDate:     r.DueDate,
	}
	if draft.Priority == "" {
		draft.Priority = task.PriorityMedium
	}
	if draft.Status == "" {
		draft.Status = task.StatusPending
	}
	return draft
}

type UpdateTaskRequest struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Priority     *task.Priority `json:"priority,omitempty"`
	Status       *task.Status   `json:"status,omitempty"`
	DueDate      *time.Time     `json:"due_date,omitempty"`
	ClearDueDate bool           `json:"clear_due_date,omitempty"`
}

// ToPatch keeps only the fields present in the request. clear_due_date
// wins over due_date.
func (r UpdateTaskRequest) ToPatch() task.Patch {
	options := make([]task.PatchOption, 0, 6)
	if r.Title != nil {
		options = append(options, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		options = append(options, task.WithDescription(*r.Description))
	}
	if r.Priority != nil {
		options = append(options, task.WithPriority(*r.Priority))
	}
	if r.Status != nil {
		options = append(options, task.WithStatus(*r.Status))
	}
	if r.DueDate != nil {
		options = append(options, task.WithDueDate(*r.DueDate))
	}
	if r.ClearDueDate {
		options = append(options, task.WithoutDueDate())
	}
	return task.NewPatch(options...)
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsOverdue   bool       `json:"is_overdue"`
}

type TaskListResponse struct {
	Tasks   []TaskResponse `json:"tasks"`
	Count   int            `json:"count"`
	Filters task.Filters   `json:"filters"`
	Sort    task.Sort      `json:"sort"`
}

func FromTask(t *task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
		IsOverdue:   view.IsOverdue(t, now),
	}
}

func FromTaskList(tasks []*task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

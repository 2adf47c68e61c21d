package view

import (
	"time"

	"todoTracker/internal/models/task"
)

type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// IsOverdue reports whether an unfinished task's deadline has passed.
func IsOverdue(t *task.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != task.StatusCompleted
}

func Summarize(tasks []*task.Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusPending:
			stats.Pending++
		case task.StatusInProgress:
			stats.InProgress++
		case task.StatusCompleted:
			stats.Completed++
		}
		if IsOverdue(t, now) {
			stats.Overdue++
		}
	}
	return stats
}

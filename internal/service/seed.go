package service

import (
	"context"
	"fmt"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"

	"go.uber.org/zap"
)

const day = 24 * time.Hour

// SeedTasks returns the example tasks a fresh session starts with, in
// display order, with timestamps relative to now.
func SeedTasks(now time.Time) []task.Task {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	return []task.Task{
		{
			Title:       "Préparer la réunion",
			Description: "Créer le support de présentation pour la réunion de lundi",
			Priority:    task.PriorityHigh,
			Status:      task.StatusPending,
			DueDate:     at(2 * day),
			CreatedAt:   now,
		},
		{
			Title:       "Réviser le code",
			Description: "Faire la revue de code du module de paiement",
			Priority:    task.PriorityMedium,
			Status:      task.StatusInProgress,
			DueDate:     at(5 * day),
			CreatedAt:   now.Add(-day),
		},
		{
			Title:       "Mettre à jour la documentation",
			Description: "Documenter les nouvelles fonctionnalités API",
			Priority:    task.PriorityLow,
			Status:      task.StatusCompleted,
			DueDate:     at(-day),
			CreatedAt:   now.Add(-3 * day),
			CompletedAt: at(-12 * time.Hour),
		},
	}
}

// Seed loads SeedTasks into the repository keeping their order and
// returns the stored tasks.
func (s *TaskService) Seed(ctx context.Context) ([]*task.Task, error) {
	seeds := SeedTasks(s.clock.Now())
	created := make([]*task.Task, len(seeds))

	// Create prepends, so insert back to front
	for i := len(seeds) - 1; i >= 0; i-- {
		t := seeds[i]
		t.ID = s.newID()
		if err := s.repo.Create(ctx, &t); err != nil {
			return nil, fmt.Errorf("seed task %q: %w", t.Title, err)
		}
		created[i] = t.Clone()
	}

	logger.Info("Service: example tasks seeded", zap.Int("count", len(created)))
	return created, nil
}

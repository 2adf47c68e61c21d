package inmemory

import (
	"context"
	"sync"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskStorage is the canonical task collection. ids keeps the display
// order, newest first; every read hands out clones.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	logger.Debug("Repository: storage is healthy", zap.Int("tasks", len(s.ids)))
	return nil
}

// Create puts the task at the front of the collection.
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrAlreadyExists
	}

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append([]uuid.UUID{taskToCreate.ID}, s.ids...)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	return taskToGet.Clone(), nil
}

// List returns the whole collection in display order.
func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.storage[id].Clone())
	}

	return res, nil
}

// Modify runs fn on the stored task under the write lock and returns the
// result. fn must not keep the pointer.
func (s *TaskStorage) Modify(ctx context.Context, id uuid.UUID, fn func(*task.Task)) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToModify, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	fn(taskToModify)
	// id is the map key and must survive whatever fn did
	taskToModify.ID = id

	return taskToModify.Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// GetTasksDueBefore returns unfinished tasks whose deadline is before
// deadline, at most limit of them. limit <= 0 means no limit.
func (s *TaskStorage) GetTasksDueBefore(ctx context.Context, deadline time.Time, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var tasks []*task.Task

	for _, id := range s.ids {
		if limit > 0 && len(tasks) >= limit {
			break
		}

		t := s.storage[id]
		if t.Status != task.StatusCompleted &&
			t.DueDate != nil &&
			t.DueDate.Before(deadline) {

			tasks = append(tasks, t.Clone())
		}
	}

	return tasks, nil
}

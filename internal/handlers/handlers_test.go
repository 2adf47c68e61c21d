package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todoTracker/internal/handlers"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/repository"
	"todoTracker/internal/service"
	"todoTracker/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockTaskService - service mock
type MockTaskService struct {
	mock.Mock
}

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) Now() time.Time {
	return fixedNow
}

func (m *MockTaskService) AddTask(ctx context.Context, draft task.Draft) (*task.Task, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ViewTasks(ctx context.Context, filters task.Filters, sort task.Sort) ([]*task.Task, error) {
	args := m.Called(ctx, filters, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ToggleComplete(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) Stats(ctx context.Context) (view.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(view.Stats), args.Error(1)
}

var _ handlers.Service = (*MockTaskService)(nil)

func newRouter(h *handlers.TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Get("/tasks", h.GetTasks)
	r.Post("/tasks", h.PostTask)
	r.Get("/tasks/stats", h.GetStats)
	r.Get("/tasks/{id}", h.GetTaskByID)
	r.Patch("/tasks/{id}", h.UpdateTaskByID)
	r.Delete("/tasks/{id}", h.DeleteTaskByID)
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	return r
}

func do(t *testing.T, m *MockTaskService, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	newRouter(handlers.NewTaskHandler(m)).ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func sampleTask(id uuid.UUID) *task.Task {
	due := fixedNow.Add(-time.Hour)
	return &task.Task{
		ID:        id,
		Title:     "Test Task",
		Priority:  task.PriorityHigh,
		Status:    task.StatusPending,
		DueDate:   &due,
		CreatedAt: fixedNow.Add(-24 * time.Hour),
	}
}

func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unavailable",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("down"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodGet, "/health", "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_PostTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - defaults applied",
			requestBody: `{"title": "Test Task", "description": "Test Description"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("AddTask", mock.Anything, task.Draft{
					Title:       "Test Task",
					Description: "Test Description",
					Priority:    task.PriorityMedium,
					Status:      task.StatusPending,
				}).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "success - explicit fields",
			requestBody: `{"title": "Test Task", "priority": "high", "status": "completed", "due_date": "2025-03-12T09:00:00Z"}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTaskService) {
				m.On("AddTask", mock.Anything, mock.MatchedBy(func(d task.Draft) bool {
					return d.Priority == task.PriorityHigh &&
						d.Status == task.StatusCompleted &&
						d.DueDate != nil && d.DueDate.Equal(fixedNow.Add(48*time.Hour))
				})).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - missing title",
			requestBody:    `{"description": "Test Description"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - validation from service",
			requestBody: `{"title": "Test Task", "priority": "urgent"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("AddTask", mock.Anything, mock.Anything).
					Return(nil, service.NewValidationError("priority", "unknown priority"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "Test Task"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("AddTask", mock.Anything, mock.Anything).Return(nil, errors.New("service error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodPost, "/tasks", tt.contentType, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, taskID, response.ID)
				assert.Equal(t, "Test Task", response.Title)
				assert.True(t, response.IsOverdue)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_GetTasks(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:  "defaults",
			query: "",
			setupMock: func(m *MockTaskService) {
				m.On("ViewTasks", mock.Anything, task.DefaultFilters(), task.DefaultSort()).
					Return([]*task.Task{sampleTask(uuid.New()), sampleTask(uuid.New())}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:  "all criteria",
			query: "?status=in_progress&priority=high&search=code&sort=dueDate&order=asc",
			setupMock: func(m *MockTaskService) {
				m.On("ViewTasks", mock.Anything,
					task.Filters{Status: task.StatusInProgress, Priority: task.PriorityHigh, Search: "code"},
					task.Sort{Field: task.SortByDueDate, Order: task.OrderAsc},
				).Return([]*task.Task{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "error - unknown status",
			query:          "?status=archived",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - unknown priority",
			query:          "?priority=urgent",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - unknown sort field",
			query:          "?sort=title",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - unknown order",
			query:          "?order=sideways",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "error - service error",
			query: "",
			setupMock: func(m *MockTaskService) {
				m.On("ViewTasks", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodGet, "/tasks"+tt.query, "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response dto.TaskListResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, tt.expectedCount, response.Count)
				assert.Len(t, response.Tasks, tt.expectedCount)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_GetTasks_InvalidQueryDetails(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		expectedField    string
		expectedAccepted []any
	}{
		{
			name:             "status",
			query:            "?status=archived",
			expectedField:    "status",
			expectedAccepted: []any{"all", "pending", "in_progress", "completed"},
		},
		{
			name:             "priority",
			query:            "?priority=urgent",
			expectedField:    "priority",
			expectedAccepted: []any{"all", "low", "medium", "high"},
		},
		{
			name:             "sort field",
			query:            "?sort=title",
			expectedField:    "sort",
			expectedAccepted: []any{"dueDate", "priority", "status", "createdAt"},
		},
		{
			name:             "sort order",
			query:            "?order=sideways",
			expectedField:    "order",
			expectedAccepted: []any{"asc", "desc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, new(MockTaskService), http.MethodGet, "/tasks"+tt.query, "", "")
			require.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeError(t, w)
			assert.Equal(t, service.CodeValidationError, body["error"])

			details, ok := body["details"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.expectedField, details["field"])
			assert.NotEmpty(t, details["reason"])
			assert.Equal(t, tt.expectedAccepted, details["accepted"])
		})
	}
}

func TestTaskHandler_LogsIncomingRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	mockService := new(MockTaskService)
	mockService.On("ViewTasks", mock.Anything, mock.Anything, mock.Anything).Return([]*task.Task{}, nil)
	mockService.On("HealthCheck", mock.Anything).Return(nil)

	do(t, mockService, http.MethodGet, "/tasks?search=code", "", "")
	do(t, mockService, http.MethodGet, "/health", "", "")

	entries := logs.FilterMessage("HTTP_IN:").All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/tasks", fields["path"])
	assert.Equal(t, "search=code", fields["query"])
	assert.Equal(t, "/health", entries[1].ContextMap()["path"])
}

func TestTaskHandler_GetStats(t *testing.T) {
	mockService := new(MockTaskService)
	mockService.On("Stats", mock.Anything).Return(view.Stats{Total: 3, Pending: 1, InProgress: 1, Completed: 1}, nil)

	w := do(t, mockService, http.MethodGet, "/tasks/stats", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var stats view.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Total)
	mockService.AssertExpectations(t)
}

func TestTaskHandler_GetTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success",
			id:   taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, taskID).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid id",
			id:             "not-a-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - nil id",
			id:             uuid.Nil.String(),
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - not found",
			id:   taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, taskID).
					Return(nil, service.NewNotFound("task", taskID.String(), repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodGet, "/tasks/"+tt.id, "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusNotFound {
				body := decodeError(t, w)
				assert.Equal(t, service.CodeNotFound, body["error"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - status only",
			requestBody: `{"status": "completed"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, taskID, mock.MatchedBy(func(p task.Patch) bool {
					return p.Status != nil && *p.Status == task.StatusCompleted &&
						p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil
				})).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "success - clear due date",
			requestBody: `{"clear_due_date": true}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, taskID, task.Patch{ClearDueDate: true}).
					Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - empty title",
			requestBody:    `{"title": "  "}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{"status": "completed"}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{"status":`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - not found",
			requestBody: `{"title": "x"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, taskID, mock.Anything).
					Return(nil, service.NewNotFound("task", taskID.String(), repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodPatch, "/tasks/"+taskID.String(), tt.contentType, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_ToggleTask(t *testing.T) {
	taskID := uuid.New()

	mockService := new(MockTaskService)
	completed := sampleTask(taskID)
	completed.Status = task.StatusCompleted
	completed.CompletedAt = &fixedNow
	mockService.On("ToggleComplete", mock.Anything, taskID).Return(completed, nil)

	w := do(t, mockService, http.MethodPost, "/tasks/"+taskID.String()+"/toggle", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.TaskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "completed", response.Status)
	require.NotNil(t, response.CompletedAt)
	assert.True(t, response.CompletedAt.Equal(fixedNow))
	assert.False(t, response.IsOverdue)
	mockService.AssertExpectations(t)
}

func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "error - not found",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).
					Return(service.NewNotFound("task", taskID.String(), repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "error - service error",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).Return(errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, mockService, http.MethodDelete, "/tasks/"+taskID.String(), "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

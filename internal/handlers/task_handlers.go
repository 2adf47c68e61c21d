package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithPayload(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()))
		return
	}

	responseWithPayload(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("time", s.TaskService.Now().Format(time.RFC3339)))
}

// GetTasks serves the filtered and sorted view of all tasks.
// Query: status, priority, search, sort, order.
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filters, sort, err := parseViewQuery(r)
	if err != nil {
		logger.Warn("HTTP: invalid view query",
			zap.Error(err),
			zap.String("query", r.URL.RawQuery),
			zap.String("client_ip", r.RemoteAddr))

		handleBusinessError(w, err)
		return
	}

	tasks, err := s.TaskService.ViewTasks(r.Context(), filters, sort)
	if err != nil {
		handleServiceError(w, r, err, "view_tasks")
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.TaskListResponse{
		Tasks:   dto.FromTaskList(tasks, s.TaskService.Now()),
		Count:   len(tasks),
		Filters: filters,
		Sort:    sort,
	})
}

func (s *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.TaskService.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "stats")
		return
	}

	responseWithJSON(w, http.StatusOK, stats)
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: cannot decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		handleBusinessError(w, service.NewValidationError("title", "must not be empty"))
		return
	}

	created, err := s.TaskService.AddTask(r.Context(), request.ToDraft())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created, s.TaskService.Now()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTask(t, s.TaskService.Now()))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if !requireJSON(w, r) {
		return
	}

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: cannot decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid update parameters: "+err.Error())
		return
	}

	if request.Title != nil && strings.TrimSpace(*request.Title) == "" {
		handleBusinessError(w, service.NewValidationError("title", "must not be empty"))
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.ToPatch())
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Now()))
}

func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	toggled, err := s.TaskService.ToggleComplete(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "toggle_task")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTask(toggled, s.TaskService.Now()))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: task deleted", zap.String("task_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

var (
	acceptedStatuses   = []string{task.All, string(task.StatusPending), string(task.StatusInProgress), string(task.StatusCompleted)}
	acceptedPriorities = []string{task.All, string(task.PriorityLow), string(task.PriorityMedium), string(task.PriorityHigh)}
	acceptedSortFields = []string{string(task.SortByDueDate), string(task.SortByPriority), string(task.SortByStatus), string(task.SortByCreatedAt)}
	acceptedSortOrders = []string{string(task.OrderAsc), string(task.OrderDesc)}
)

func invalidQueryParam(param string, err error, accepted []string) *service.BusinessError {
	return service.NewBusinessError(service.CodeValidationError,
		fmt.Sprintf("invalid value of query parameter '%s'", param),
		service.ToDetail("field", param),
		service.ToDetail("reason", err.Error()),
		service.ToDetail("accepted", accepted),
	)
}

func parseViewQuery(r *http.Request) (task.Filters, task.Sort, error) {
	q := r.URL.Query()
	filters := task.DefaultFilters()
	sort := task.DefaultSort()

	status, err := task.ParseStatusFilter(q.Get("status"))
	if err != nil {
		return filters, sort, invalidQueryParam("status", err, acceptedStatuses)
	}
	priority, err := task.ParsePriorityFilter(q.Get("priority"))
	if err != nil {
		return filters, sort, invalidQueryParam("priority", err, acceptedPriorities)
	}
	field, err := task.ParseSortField(q.Get("sort"))
	if err != nil {
		return filters, sort, invalidQueryParam("sort", err, acceptedSortFields)
	}
	order, err := task.ParseSortOrder(q.Get("order"))
	if err != nil {
		return filters, sort, invalidQueryParam("order", err, acceptedSortOrders)
	}

	filters.Status = status
	filters.Priority = priority
	filters.Search = q.Get("search")
	sort.Field = field
	sort.Order = order

	return filters, sort, nil
}

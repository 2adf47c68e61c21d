package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"todoTracker/internal/clock"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/repository/task/inmemory"
	"todoTracker/internal/service"
	"todoTracker/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App owns one session: its task collection lives exactly as long as the
// App does.
type App struct {
	config     *config.Config
	clock      clock.Clock
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository
	service    *service.TaskService
	worker     *worker.OverdueWorker
	shutdowns  []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		clock:     clock.Real{},
		shutdowns: make([]func(), 0),
	}
}

// WithClock replaces the wall clock, call it before Init.
func (a *App) WithClock(c clock.Clock) *App {
	a.clock = c
	return a
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	a.repository = inmemory.NewTaskStorage()
	a.service = service.NewTaskService(a.repository, service.WithClock(a.clock))

	if a.config.Seed.Enabled {
		if _, err := a.service.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed tasks: %w", err)
		}
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(a.service, a.config.Worker.Interval, a.config.Worker.BatchSize)
	}

	a.router = NewRouter(handlers.NewTaskHandler(a.service), a.config.HTTP)
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "todo-api"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	return a, nil
}

func NewRouter(taskHandler *handlers.TaskHandler, httpCfg config.HTTPConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: httpCfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(httpCfg.RateLimitRPM))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.GetTasks)      // GET /tasks
		r.Post("/", taskHandler.PostTask)     // POST /tasks
		r.Get("/stats", taskHandler.GetStats) // GET /tasks/stats

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Patch("/", taskHandler.UpdateTaskByID)  // PATCH /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/toggle", taskHandler.ToggleTask) // POST /tasks/{id}/toggle
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

// Run serves HTTP and runs the worker until ctx is cancelled, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("App: shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		logger.Error("App: stopped with error", err)
	}
	a.Close()
	return err
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) Service() *service.TaskService {
	return a.service
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

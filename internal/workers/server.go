// internal/workers/server.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-be/internal/pkg/config"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
)

// RedisOpt builds the asynq connection options from config
func RedisOpt(cfg *config.AsynqConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewServer creates the asynq server the worker binary runs
func NewServer(cfg *config.AsynqConfig, logger *slog.Logger) *asynq.Server {
	l := logger.With(slog.String("component", "asynq"))
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          cfg.Queues,
		StrictPriority:  cfg.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(errorHandler(l)),
		RetryDelayFunc:  ExponentialBackoff,
		ShutdownTimeout: cfg.ShutdownTimeout,
		HealthCheckFunc: func(err error) {
			if err != nil {
				l.Error("worker health check failed", "err", err)
			}
		},
		Logger: newAsynqLogger(l),
	})
}

// NewServeMux registers every task handler
func NewServeMux(notifications *NotificationProcessor, cleanup *CleanupProcessor, m *metrics.Metrics) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	if m != nil {
		mux.Use(RecordTasks(m))
	}
	mux.HandleFunc(TypeOrderConfirmation, notifications.SendOrderConfirmation)
	mux.HandleFunc(TypeCleanupCartSlots, cleanup.CleanupCartSlots)
	return mux
}

// RecordTasks counts task outcomes by type
func RecordTasks(m *metrics.Metrics) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			err := next.ProcessTask(ctx, t)
			m.TaskProcessed(t.Type(), err)
			return err
		})
	}
}

// NewScheduler registers the periodic slot sweep
func NewScheduler(cfg *config.AsynqConfig, sweepAfter time.Duration, logger *slog.Logger) (*asynq.Scheduler, error) {
	l := logger.With(slog.String("component", "scheduler"))
	scheduler := asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{
		Logger: newAsynqLogger(l),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				l.Error("failed to enqueue scheduled task", "err", err)
			}
		},
	})

	task, err := NewCleanupCartSlotsTask(sweepAfter)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.CleanupSchedule, task); err != nil {
		return nil, fmt.Errorf("failed to register cleanup schedule %q: %w", cfg.CleanupSchedule, err)
	}
	return scheduler, nil
}

// ExponentialBackoff doubles the retry delay per attempt, capped at ten minutes
func ExponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	if n >= 20 {
		return maxDelay
	}
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func errorHandler(logger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.ErrorContext(ctx, "task processing failed",
			slog.String("type", task.Type()),
			slog.Int("retried", retried),
			slog.Int("max_retry", maxRetry),
			"err", err)
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}

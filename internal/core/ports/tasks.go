// internal/core/ports/tasks.go
package ports

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the subset of *asynq.Client used to publish background work
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

package worker

import (
	"context"
	"route-planner-service/internal/adapters/notify"
	"route-planner-service/internal/domain"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Expirer lapses pending assignments. Implemented by the assignment coordinator.
type Expirer interface {
	ExpireAssignment(ctx context.Context, assignmentID string) (domain.DriverAssignment, error)
}

// Processor runs the asynq server for offer fan-out and expiry tasks.
type Processor struct {
	server   *asynq.Server
	handlers *Handlers
}

// Handlers holds the task handlers so they can run without a server.
type Handlers struct {
	Publisher redis.UniversalClient
	Expirer   Expirer
}

func NewProcessor(redisOpt asynq.RedisClientOpt, publisher redis.UniversalClient, expirer Expirer, concurrency int) *Processor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				notify.QueueCritical: 10,
				notify.QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			RetryDelayFunc:  retryDelay,
			Logger:          NewLogger(),
			ShutdownTimeout: 10 * time.Second,
		},
	)

	return &Processor{
		server:   server,
		handlers: &Handlers{Publisher: publisher, Expirer: expirer},
	}
}

// Early expiry tasks retry quickly; everything else backs off as asynq does by default.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	if task.Type() == notify.TaskAssignmentExpire && n < 5 {
		return 15 * time.Second
	}
	return asynq.DefaultRetryDelayFunc(n, err, task)
}

func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskRouteOffered, p.handlers.HandleRouteOffered)
	mux.HandleFunc(notify.TaskAssignmentExpire, p.handlers.HandleAssignmentExpire)
	return mux
}

func (p *Processor) Start() error {
	return p.server.Start(p.Mux())
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

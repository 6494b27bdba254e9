package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/ports"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Subset of *asynq.Client used to hand tasks to Redis.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqNotifier hands offer notifications and expiry timers to the asynq queue.
type AsynqNotifier struct {
	client  enqueuer
	breaker *Breaker
}

func NewAsynqNotifier(client *asynq.Client, breaker *Breaker) *AsynqNotifier {
	return &AsynqNotifier{client: client, breaker: breaker}
}

func (n *AsynqNotifier) NotifyRouteOffered(ctx context.Context, ev ports.RouteOffered) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify route offered: marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskRouteOffered, payload)
	info, err := n.enqueue(ctx, task, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("notify route offered: enqueue task: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Str("route_id", ev.RouteID).
		Str("driver_id", ev.DriverID).
		Msg("enqueued route offer task")

	return nil
}

func (n *AsynqNotifier) ScheduleAssignmentExpiry(ctx context.Context, assignmentID string, at time.Time) error {
	payload, err := json.Marshal(PayloadAssignmentExpire{AssignmentID: assignmentID, ExpiresAt: at})
	if err != nil {
		return fmt.Errorf("schedule expiry: marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskAssignmentExpire, payload)
	info, err := n.enqueue(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.ProcessAt(at),
		asynq.TaskID("expire:"+assignmentID),
		asynq.MaxRetry(10),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("schedule expiry: enqueue task: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Str("assignment_id", assignmentID).
		Time("process_at", at).
		Msg("scheduled assignment expiry task")

	return nil
}

// A duplicate task ID is returned as asynq.ErrTaskIDConflict without
// counting as a breaker failure.
func (n *AsynqNotifier) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var info *asynq.TaskInfo
	var duplicate bool
	err := n.breaker.Execute(func() error {
		var err error
		info, err = n.client.EnqueueContext(ctx, task, opts...)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			duplicate = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, asynq.ErrTaskIDConflict
	}
	return info, nil
}

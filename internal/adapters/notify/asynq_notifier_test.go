package notify

import (
	"context"
	"encoding/json"
	"errors"
	"route-planner-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t", Queue: QueueDefault, Type: task.Type()}, nil
}

func newTestNotifier(q *fakeEnqueuer) *AsynqNotifier {
	return &AsynqNotifier{
		client:  q,
		breaker: NewBreaker(BreakerSettings{Name: "notifier-test", Timeout: time.Minute, MinRequests: 3}),
	}
}

func TestAsynqNotifierEnqueuesRouteOffered(t *testing.T) {
	q := &fakeEnqueuer{}
	n := newTestNotifier(q)

	ev := ports.RouteOffered{
		AssignmentID:      "a-1",
		RouteID:           "r-1",
		DriverID:          "drv-1",
		StopCount:         4,
		DropCount:         2,
		DistanceKm:        12.5,
		EstimatedEarnings: decimal.RequireFromString("20.67"),
		ExpiresAt:         time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC),
	}
	require.NoError(t, n.NotifyRouteOffered(context.Background(), ev))

	require.Len(t, q.tasks, 1)
	require.Equal(t, TaskRouteOffered, q.tasks[0].Type())

	var got ports.RouteOffered
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &got))
	require.Equal(t, "r-1", got.RouteID)
	require.True(t, got.EstimatedEarnings.Equal(ev.EstimatedEarnings))
}

func TestAsynqNotifierSchedulesExpiry(t *testing.T) {
	q := &fakeEnqueuer{}
	n := newTestNotifier(q)

	at := time.Now().Add(30 * time.Minute)
	require.NoError(t, n.ScheduleAssignmentExpiry(context.Background(), "a-9", at))

	require.Len(t, q.tasks, 1)
	require.Equal(t, TaskAssignmentExpire, q.tasks[0].Type())

	var p PayloadAssignmentExpire
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &p))
	require.Equal(t, "a-9", p.AssignmentID)
}

func TestAsynqNotifierDuplicateExpiryIsNotAnError(t *testing.T) {
	q := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
	n := newTestNotifier(q)

	require.NoError(t, n.ScheduleAssignmentExpiry(context.Background(), "a-9", time.Now()))
	require.Equal(t, gobreaker.StateClosed, n.breaker.State())
}

func TestAsynqNotifierBreakerOpensOnFailures(t *testing.T) {
	q := &fakeEnqueuer{err: errors.New("redis down")}
	n := newTestNotifier(q)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := n.NotifyRouteOffered(ctx, ports.RouteOffered{RouteID: "r"})
		require.ErrorContains(t, err, "redis down")
	}

	require.Equal(t, gobreaker.StateOpen, n.breaker.State())
	err := n.NotifyRouteOffered(ctx, ports.RouteOffered{RouteID: "r"})
	require.ErrorIs(t, err, ErrDispatcherUnavailable)
}

func TestLogNotifier(t *testing.T) {
	var n ports.Notifier = LogNotifier{}
	require.NoError(t, n.NotifyRouteOffered(context.Background(), ports.RouteOffered{RouteID: "r"}))
	require.NoError(t, n.ScheduleAssignmentExpiry(context.Background(), "a", time.Now()))
}

func TestOffersChannel(t *testing.T) {
	require.Equal(t, "driver:drv-1:offers", OffersChannel("drv-1"))
}

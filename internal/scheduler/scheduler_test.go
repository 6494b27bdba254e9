package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := New(time.Second)

	var runs atomic.Int32
	require.NoError(t, s.Add("catalog-reload", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("failing", "@every 1s", func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.Equal(t, 2, s.Jobs())

	s.Start()
	t.Cleanup(func() { s.Stop(context.Background()) })

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 4*time.Second, 50*time.Millisecond)
}

func TestSchedulerDisabledAndInvalidSpecs(t *testing.T) {
	s := New(0)

	require.NoError(t, s.Add("plan", "", func(ctx context.Context) error { return nil }))
	require.Equal(t, 0, s.Jobs())

	require.Error(t, s.Add("plan", "not a cron spec", func(ctx context.Context) error { return nil }))
	require.Error(t, s.Add("plan", "@hourly", nil))
}

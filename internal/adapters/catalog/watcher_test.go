package catalog

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	p := writeCatalog(t, `{"items":[]}`)
	target := &countingReloader{}

	w, err := NewWatcher(p, target, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(p, []byte(`{"items":[{"id":"a","name":"A","weight":1}]}`), 0o644))
	}

	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	p := writeCatalog(t, `{"items":[]}`)
	target := &countingReloader{}

	w, err := NewWatcher(p, target, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(p+".bak", []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(0), target.calls.Load())
}

func TestNewWatcherRejectsNilTarget(t *testing.T) {
	_, err := NewWatcher("catalog.json", nil, 0)
	require.Error(t, err)
}

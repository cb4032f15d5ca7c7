package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const testSettle = 100 * time.Millisecond

func newWatcher(t *testing.T, exts []string, opts ...Option) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(exts, logger.NewNopLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func nextEvent(t *testing.T, events <-chan ports.FileEvent, within time.Duration) ports.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(within):
		t.Fatal("timeout waiting for event")
	}
	return ports.FileEvent{}
}

func assertQuiet(t *testing.T, events <-chan ports.FileEvent, window time.Duration) {
	t.Helper()
	select {
	case ev := <-events:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(window):
	}
}

func TestFSNotifyWatcher_NormalizesExtensions(t *testing.T) {
	w := newWatcher(t, []string{".PDF", ".txt"})

	assert.True(t, w.isCandidate("/tmp/report.pdf"))
	assert.True(t, w.isCandidate("/tmp/NOTES.TXT"))
	assert.False(t, w.isCandidate("/tmp/data.json"))
}

func TestFSNotifyWatcher_NoFilterWatchesEverything(t *testing.T) {
	w := newWatcher(t, nil)
	assert.True(t, w.isCandidate("/tmp/anything.bin"))
}

func TestFSNotifyWatcher_SkipsLockAndHiddenFiles(t *testing.T) {
	w := newWatcher(t, []string{".docx", ".txt"})

	assert.False(t, w.isCandidate("/tmp/~$report.docx"))
	assert.False(t, w.isCandidate("/tmp/.notes.txt"))
	assert.True(t, w.isCandidate("/tmp/report.docx"))
}

func TestFSNotifyWatcher_ReportsCreatedFileOnceSettled(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, []string{".txt"}, WithSettle(testSettle))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	// create, then keep appending as a slow copy would
	path := filepath.Join(dir, "test.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.WriteString("chunk\n")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(testSettle / 4)
	}
	require.NoError(t, f.Close())

	ev := nextEvent(t, events, 2*time.Second)
	assert.Equal(t, ports.FileCreated, ev.Operation)
	assert.Equal(t, "test.txt", filepath.Base(ev.Path))

	assertQuiet(t, events, 3*testSettle)
}

func TestFSNotifyWatcher_ImmediateWithoutSettle(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, []string{".txt"}, WithSettle(0))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "now.txt"), []byte("hi"), 0644))

	ev := nextEvent(t, events, time.Second)
	assert.Equal(t, ports.FileCreated, ev.Operation)
}

func TestFSNotifyWatcher_RemovedBeforeSettleIsNotReported(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, []string{".txt"}, WithSettle(300*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "temp.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	assertQuiet(t, events, time.Second)
}

func TestFSNotifyWatcher_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, []string{".txt"}, WithSettle(testSettle))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte("{}"), 0644))

	assertQuiet(t, events, 3*testSettle)
}

func TestFSNotifyWatcher_MissingDirectory(t *testing.T) {
	w := newWatcher(t, nil)
	_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFSNotifyWatcher_ClosesOnCancel(t *testing.T) {
	w := newWatcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := w.Watch(ctx, t.TempDir())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Error("events channel not closed after cancel")
	}
}

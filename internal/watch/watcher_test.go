package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDebounce = 50 * time.Millisecond

func startWatcher(t *testing.T, dirs []string, reload ReloadFunc) *Watcher {
	t.Helper()
	w, err := New(dirs, testDebounce, reload)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestWatcher_ReloadsOnCSVChange(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w := startWatcher(t, []string{dir}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	writeFile(t, filepath.Join(dir, "player_cards.csv"), "Jade,G\n")
	writeFile(t, filepath.Join(dir, "player_cards.csv"), "Jade,G\nRuby,G\n")

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, int32(1), calls.Load(), "writes within the debounce window reload once")

	stats := w.Stats()
	assert.Equal(t, 1, stats.Reloads)
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.Equal(t, filepath.Join(dir, "player_cards.csv"), stats.LastEventPath)
	assert.False(t, stats.LastReload.IsZero())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w := startWatcher(t, []string{dir}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(6 * testDebounce)
	assert.Zero(t, calls.Load())
	assert.Zero(t, w.Stats().Events)
}

func TestWatcher_MechanicFiles(t *testing.T) {
	dir := t.TempDir()
	reloaded := make(chan struct{}, 4)
	startWatcher(t, []string{dir}, func(context.Context) error {
		reloaded <- struct{}{}
		return nil
	})

	writeFile(t, filepath.Join(dir, "echo.lexive"), "Echo\n")
	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload for a mechanic file")
	}
}

func TestWatcher_NewGuildDirectory(t *testing.T) {
	guilds := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, []string{guilds}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	guild := filepath.Join(guilds, "123")
	require.NoError(t, os.Mkdir(guild, 0755))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	before := calls.Load()
	writeFile(t, filepath.Join(guild, "boxes.csv"), "G,Guild Box,1\n")
	require.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_ReloadErrorKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w := startWatcher(t, []string{dir}, func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("bad row")
		}
		return nil
	})

	writeFile(t, filepath.Join(dir, "boxes.csv"), "broken")
	require.Eventually(t, func() bool { return w.Stats().Errors == 1 }, 3*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "boxes.csv"), "fixed")
	require.Eventually(t, func() bool { return w.Stats().Reloads == 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	w := startWatcher(t, []string{missing, ""}, func(context.Context) error { return nil })
	assert.Zero(t, w.Stats().Events)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := New([]string{t.TempDir()}, 0, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceDur)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestWatcher_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := New([]string{t.TempDir()}, testDebounce, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	cancel()
	w.Stop()
}

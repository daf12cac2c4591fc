package protocol

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proto.md")
	require.NoError(t, os.WriteFile(path, []byte("version 1"), 0o644))

	store, err := NewStore(WithDir(dir))
	require.NoError(t, err)

	watcher, err := NewWatcher(store, nil)
	require.NoError(t, err)
	watcher.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("version 2"), 0o644))

	require.Eventually(t, func() bool {
		proto, ok := store.Get("proto")
		return ok && proto.Text == "version 2"
	}, 5*time.Second, 20*time.Millisecond, "watcher should pick up the edit")
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(WithDir(dir))
	require.NoError(t, err)

	watcher, err := NewWatcher(store, nil)
	require.NoError(t, err)
	watcher.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("fresh protocol"), 0o644))

	require.Eventually(t, func() bool {
		_, ok := store.Get("new")
		return ok
	}, 5*time.Second, 20*time.Millisecond, "watcher should index new files")
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))

	changes := make(chan struct{}, 16)
	w, err := New(dir, func() { changes <- struct{}{} })
	require.NoError(t, err)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("x"), 0o644))
	waitForChange(t, changes)
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan struct{}, 16)
	w, err := New(dir, func() { changes <- struct{}{} })
	require.NoError(t, err)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	// The directory create itself fires once; by then the new directory is
	// under watch.
	waitForChange(t, changes)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))
	waitForChange(t, changes)
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan struct{}, 16)
	w, err := New(dir, func() { changes <- struct{}{} })
	require.NoError(t, err)
	defer w.Stop()

	w.Start(context.Background())

	for i := range 5 {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".js")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}
	waitForChange(t, changes)

	// One quiet debounce window later the burst has collapsed into the
	// notification above, not one per write.
	time.Sleep(400 * time.Millisecond)
	require.LessOrEqual(t, len(changes), 1)
}

func TestWatcherStopTwice(t *testing.T) {
	w, err := New(t.TempDir(), func() {})
	require.NoError(t, err)
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

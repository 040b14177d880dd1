package statpad

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexWatcherDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statpad.db")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var refreshes atomic.Int32
	fired := make(chan struct{}, 8)
	w, err := newIndexWatcher(path, 50*time.Millisecond, func() {
		refreshes.Add(1)
		fired <- struct{}{}
	})
	require.NoError(t, err)
	defer w.Close()

	// A burst of writes inside the debounce window collapses to one rebuild.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never fired after file writes")
	}

	// Let any stray timer fire before counting.
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), refreshes.Load())
}

func TestIndexWatcherMissingFile(t *testing.T) {
	_, err := newIndexWatcher(filepath.Join(t.TempDir(), "absent.db"), time.Second, func() {})
	require.Error(t, err)
}

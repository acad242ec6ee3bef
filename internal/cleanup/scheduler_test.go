package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanOldFilesRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.wav")
	fresh := filepath.Join(dir, "fresh.wav")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	s := NewScheduler(dir, 30, 24)
	assert.Equal(t, 1, s.cleanOldFiles())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanOldFilesMissingDir(t *testing.T) {
	s := NewScheduler(filepath.Join(t.TempDir(), "missing"), 30, 24)
	assert.Equal(t, 0, s.cleanOldFiles())
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(t.TempDir(), 30, 24)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDirs(a, ""))
	info, err := os.Stat(a)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

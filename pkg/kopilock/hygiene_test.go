package kopilock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHygiene_Threshold(t *testing.T) {
	h := NewHygiene()
	assert.Equal(t, h.Floor, h.Threshold(0))
	assert.Equal(t, 300*time.Second, h.Threshold(100*time.Second))
}

func TestHygiene_RemoveStaleMarker(t *testing.T) {
	h := &Hygiene{SafetyFactor: 3, Floor: 0}
	dir := t.TempDir()
	path := filepath.Join(dir, "marker")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	removed, err := h.RemoveStaleMarker(path, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, removed)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHygiene_RemoveStaleMarkerLeavesFreshFile(t *testing.T) {
	h := NewHygiene()
	dir := t.TempDir()
	path := filepath.Join(dir, "marker")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	removed, err := h.RemoveStaleMarker(path, time.Hour)
	require.NoError(t, err)
	assert.False(t, removed)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestHygiene_SweepOrphanTemps(t *testing.T) {
	h := &Hygiene{SafetyFactor: 1, Floor: 0}
	dir := t.TempDir()
	stale := filepath.Join(dir, "cache.json.tmp1")
	fresh := filepath.Join(dir, "cache.json.tmp2")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o600))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	h.SweepOrphanTemps(dir, "cache.json", 500*time.Millisecond)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

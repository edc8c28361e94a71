package glue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopi-vm/kopi/pkg/kopicache"
)

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(ctx context.Context) ([]byte, error) { return f.data, f.err }

func TestRefreshCache_WritesFetchedPayload(t *testing.T) {
	home := t.TempDir()
	cachePath := filepath.Join(home, "cache", "releases.json")

	err := RefreshCache(context.Background(), fakeFetcher{data: []byte(`{"releases":["21"]}`)}, CacheRefreshOptions{
		Home:          home,
		Inspector:     fakeInspector{},
		CachePath:     cachePath,
		SchemaVersion: 2,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	var env kopicache.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, 2, env.SchemaVersion)
	assert.JSONEq(t, `{"releases":["21"]}`, string(env.Payload))
}

func TestRefreshCache_PropagatesFetchFailure(t *testing.T) {
	home := t.TempDir()
	cachePath := filepath.Join(home, "cache", "releases.json")

	err := RefreshCache(context.Background(), fakeFetcher{err: assertAnError}, CacheRefreshOptions{
		Home:      home,
		Inspector: fakeInspector{},
		CachePath: cachePath,
	})
	assert.Error(t, err)
	_, statErr := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(statErr))
}

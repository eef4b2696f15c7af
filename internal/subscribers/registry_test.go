package subscribers

import (
	"os"
	"path/filepath"
	"testing"

	"highbuy-monitor/internal/infra/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "subscribers.json")
}

func TestLoadMissingFile(t *testing.T) {
	r, err := Load(tempFile(t), nil)
	require.NoError(t, err)
	assert.Zero(t, r.Len())
}

func TestLoadMergesSeeds(t *testing.T) {
	path := tempFile(t)
	require.NoError(t, fs.SaveSubscribers(path, []int64{100, 200}))

	r, err := Load(path, []int64{200, 300})
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200, 300}, r.ListAll())

	// merged seeds were written back to disk
	persisted, err := fs.LoadSubscribers(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200, 300}, persisted)
}

func TestAddRemove(t *testing.T) {
	path := tempFile(t)
	r, err := Load(path, nil)
	require.NoError(t, err)

	assert.True(t, r.Add(42))
	assert.False(t, r.Add(42), "duplicate add reports not-new")
	assert.True(t, r.Contains(42))

	assert.True(t, r.Remove(42))
	assert.False(t, r.Remove(42), "removing an absent chat reports not-present")
	assert.False(t, r.Contains(42))
}

func TestMutationsPersist(t *testing.T) {
	path := tempFile(t)
	r, err := Load(path, nil)
	require.NoError(t, err)

	r.Add(1)
	r.Add(2)
	r.Remove(1)

	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, reloaded.ListAll())
}

func TestLoadCorruptFile(t *testing.T) {
	path := tempFile(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

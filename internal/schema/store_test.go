package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveThenLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	baseline := map[string]interface{}{"type": "object"}
	created, err := store.Save("GET", "http://api/items", baseline)
	require.NoError(t, err)
	assert.True(t, created)

	loaded, found, err := store.Load("GET", "http://api/items")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, baseline, loaded)
}

func TestStorePersistOnce(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("GET", "http://api/items", map[string]interface{}{"type": "object"})
	require.NoError(t, err)

	// A second save must not replace the baseline.
	created, err := store.Save("GET", "http://api/items", map[string]interface{}{"type": "array"})
	require.NoError(t, err)
	assert.False(t, created)

	loaded, found, err := store.Load("GET", "http://api/items")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "object", loaded["type"])
}

func TestStoreMissingBaseline(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, found, err := store.Load("GET", "http://api/never-seen")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreKeysSeparateMethodAndURL(t *testing.T) {
	assert.NotEqual(t, Key("GET", "http://api/items"), Key("POST", "http://api/items"))
	assert.NotEqual(t, Key("GET", "http://api/items"), Key("GET", "http://api/users"))
}

func TestStoreCorruptBaseline(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, Key("GET", "http://api/items")+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, _, err = store.Load("GET", "http://api/items")
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

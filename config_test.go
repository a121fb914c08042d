package quill_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-js/quill"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses fields", func(t *testing.T) {
		c, err := quill.LoadConfig(strings.NewReader("memory_limit: 1048576\natom_table_size: 64\ntrace: true\n"))
		require.NoError(t, err)
		assert.Equal(t, 1048576, c.MemoryLimit)
		assert.Equal(t, 64, c.AtomTableSize)
		assert.True(t, c.Trace)
	})

	t.Run("defaults are zero", func(t *testing.T) {
		c, err := quill.LoadConfig(strings.NewReader("{}"))
		require.NoError(t, err)
		assert.Equal(t, 0, c.MemoryLimit)
		assert.False(t, c.Trace)
	})

	t.Run("unknown fields fail loudly", func(t *testing.T) {
		_, err := quill.LoadConfig(strings.NewReader("memory_limt: 100\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse runtime config")
	})

	t.Run("negative memory limit is rejected", func(t *testing.T) {
		_, err := quill.LoadConfig(strings.NewReader("memory_limit: -1\n"))
		require.Error(t, err)
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("memory_limit: 4096\n"), 0o644))

	c, err := quill.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, c.MemoryLimit)

	_, err = quill.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	c := quill.Config{MemoryLimit: 600}
	rt := quill.NewRuntime(c.Options()...)
	defer rt.Close()
	ctx := rt.NewContext()
	defer ctx.Close()

	small := ctx.String("fits")
	require.False(t, small.IsException())
	ctx.FreeValue(small)

	huge := ctx.String(strings.Repeat("x", 4096))
	assert.True(t, huge.IsException())
	ctx.FreeValue(ctx.TakeException())
}

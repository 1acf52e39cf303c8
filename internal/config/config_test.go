package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "du", cfg.Settings.DuCommand)
	assert.False(t, cfg.Settings.SortBySize)
	assert.False(t, cfg.Settings.AbsolutePaths)
	assert.False(t, cfg.Settings.HumanSizes)
	assert.False(t, cfg.Watch.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("missing_file_returns_defaults", func(t *testing.T) {
		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, New(), cfg)
	})

	t.Run("partial_file_keeps_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("settings:\n  sort_by_size: true\n"), 0o644))

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.Settings.SortBySize)
		assert.Equal(t, "du", cfg.Settings.DuCommand)
	})

	t.Run("full_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `settings:
  sort_by_size: true
  absolute_paths: true
  human_sizes: true
  du_command: gdu
watch:
  enabled: true
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.Settings.AbsolutePaths)
		assert.True(t, cfg.Settings.HumanSizes)
		assert.Equal(t, "gdu", cfg.Settings.DuCommand)
		assert.True(t, cfg.Watch.Enabled)
	})

	t.Run("unparseable_file_errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\t::not yaml"), 0o644))

		_, err := LoadConfigFile(path)
		assert.Error(t, err)
	})
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/memo-cli/memo/internal/adapters/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	content := `
cache: /var/cache/memo
share_cache: true
record_exit_codes: 0,10-12
watch_scope:
  - team-a
  - nightly
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults{
		Cache:           "/var/cache/memo",
		ShareCache:      true,
		RecordExitCodes: "0,10-12",
		WatchScope:      []string{"team-a", "nightly"},
	}, d)
}

func TestLoadFile_MissingFileYieldsZeroDefaults(t *testing.T) {
	d, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults{}, d)
}

func TestLoadFile_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("cache: /tmp/c\n"), 0o644))

	d, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c", d.Cache)
	assert.False(t, d.ShareCache)
	assert.Empty(t, d.WatchScope)
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("cache: [unclosed\n"), 0o644))

	_, err := config.LoadFile(path)
	require.Error(t, err)
}

func TestLoad_MissingUserConfigIsNotAnError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	d, err := config.Load("memo")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults{}, d)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "histomap.db", cfg.Database)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, 128, cfg.QueueSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
database: /data/maps.db
cache_size: 16
queue_size: 64
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/maps.db", cfg.Database)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, 64, cfg.QueueSize)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `database: other.db`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.Database)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, 128, cfg.QueueSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty database", `database: ""`},
		{"zero cache", `cache_size: 0`},
		{"negative queue", `queue_size: -1`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.CacheSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.QueueSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database = ""
	assert.Error(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvConfigPath, EnvDBPath, EnvLogLevel, EnvUniProtURL} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dsbmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dsbmap", "catalog.db"), cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Decoder.StrictPartition)
	assert.Equal(t, 1000.0, cfg.Layout.Width)
	assert.True(t, cfg.UniProt.Enabled)
	assert.Equal(t, 30*time.Second, cfg.UniProt.Timeout)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
database:
  path: /tmp/catalog.db
log:
  level: debug
  format: json
decoder:
  strict_partition: true
layout:
  width: 1200
  bond_length: 25
import:
  workers: 4
uniprot:
  enabled: false
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/catalog.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Decoder.StrictPartition)
	assert.Equal(t, 1200.0, cfg.Layout.Width)
	assert.Equal(t, 500.0, cfg.Layout.Height, "unset keys keep defaults")
	assert.Equal(t, 25.0, cfg.Layout.BondLength)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.Equal(t, 200, cfg.Import.BatchSize)
	assert.False(t, cfg.UniProt.Enabled)
	assert.Equal(t, 5*time.Second, cfg.UniProt.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "database:\n  path: /tmp/file.db\n")
	t.Setenv(EnvDBPath, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvUniProtURL, "http://localhost:9999/uniprotkb")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://localhost:9999/uniprotkb", cfg.UniProt.BaseURL)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeFile(t, "log:\n  level: error\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "database:\n  file: x.db\n"},
		{name: "bad level", content: "log:\n  level: loud\n"},
		{name: "bad format", content: "log:\n  format: xml\n"},
		{name: "negative width", content: "layout:\n  width: -1\n"},
		{name: "negative workers", content: "import:\n  workers: -2\n"},
		{name: "bad duration", content: "uniprot:\n  timeout: soon\n"},
		{name: "not yaml", content: "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "dsbmap.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Layout, cfg.Layout)
	assert.Equal(t, Default().UniProt, cfg.UniProt)
}

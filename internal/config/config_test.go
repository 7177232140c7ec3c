package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seamcheck.yml"), []byte(content), 0o644))
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
backendDir: app
frontendDir: src
specPath: openapi.yml
excludeDirs: [node_modules, .venv]
cacheDir: .seamcheck
untypedTokens: [dict, JSONValue]
output: json
verbose: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.BackendDir)
	assert.Equal(t, "src", cfg.FrontendDir)
	assert.Equal(t, "openapi.yml", cfg.SpecPath)
	assert.Equal(t, []string{"node_modules", ".venv"}, cfg.ExcludeDirs)
	assert.Equal(t, []string{"dict", "JSONValue"}, cfg.UntypedTokens)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Verbose)
}

func TestLoad_InvalidOutput(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output: xml\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid seamcheck.yml")
}

func TestLoad_InvalidSpecPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "specPath: openapi.txt\n")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output: [unclosed\n")

	_, err := Load(dir)
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWhenFileIsAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, Default().OverloadWarnings, cfg.OverloadWarnings)
	assert.True(t, cfg.Deduplicate)
	assert.False(t, cfg.SkipNonInstantiableInstanceMembers)
	assert.Equal(t, []string{"**/*.java"}, cfg.Include)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.ExcludePackages)
}

func TestLoad_ReadsFileInDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `exclude_packages:
  - com.example.internal
  - com.example.impl
whitelist: accepted.txt
overload_warnings: false
skip_non_instantiable_instance_members: true
deduplicate: false
format: json
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"com.example.internal", "com.example.impl"}, cfg.ExcludePackages)
	assert.Equal(t, "accepted.txt", cfg.Whitelist)
	assert.False(t, cfg.OverloadWarnings)
	assert.True(t, cfg.SkipNonInstantiableInstanceMembers)
	assert.False(t, cfg.Deduplicate)
	assert.Equal(t, "json", cfg.Format)

	opts := cfg.Options()
	assert.Equal(t, cfg.ExcludePackages, opts.ExcludedPackages)
	assert.False(t, opts.OverloadWarnings)
	assert.True(t, opts.SkipNonInstantiableInstanceMembers)
	assert.False(t, cfg.ReportOptions().Deduplicate)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "format: json\n")

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: text\n")
	t.Setenv("APICHECK_FORMAT", "json")
	t.Setenv("APICHECK_OVERLOAD_WARNINGS", "false")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.False(t, cfg.OverloadWarnings)
}

func TestLoad_RejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: xml\n")

	_, err := Load(dir, "")
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "format", cfgErr.Field)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log_level: chatty\n")

	_, err := Load(dir, "")
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "log_level", cfgErr.Field)
}

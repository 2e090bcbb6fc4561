package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lspbridge.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  command: gopls\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gopls", cfg.Server.Command)
	assert.Equal(t, "push", cfg.Server.DiagnosticsStrategy)
	assert.Equal(t, 3*time.Second, cfg.Server.DiagnosticsWaitTimeout())
	assert.Equal(t, "default", cfg.Server.LoaderVariant)
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	dir := writeConfig(t, "server:\n  diagnostics_strategy: push\n")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRejectsInvalidDiagnosticsStrategy(t *testing.T) {
	dir := writeConfig(t, "server:\n  command: gopls\n  diagnostics_strategy: weird\n")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadParsesExtensionMapAndPreload(t *testing.T) {
	dir := writeConfig(t, `server:
  command: typescript-language-server
  args: ["--stdio"]
  extension_to_language:
    .ts: typescript
    .tsx: typescriptreact
  preload:
    - src/index.ts
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"--stdio"}, cfg.Server.Args)
	assert.Equal(t, "typescript", cfg.Server.ExtensionToLanguage[".ts"])
	assert.Equal(t, []string{"src/index.ts"}, cfg.Server.Preload)
}

func TestDiagnosticsWaitTimeoutCustomValue(t *testing.T) {
	d := ServerDescriptor{DiagnosticsWaitMS: 500}
	assert.Equal(t, 500*time.Millisecond, d.DiagnosticsWaitTimeout())
}

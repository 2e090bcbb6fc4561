package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServeCommandFlagDefaults(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)

	configFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, ".", configFlag.DefValue)

	workspaceFlag := cmd.Flags().Lookup("workspace")
	require.NotNil(t, workspaceFlag)
	assert.Equal(t, ".", workspaceFlag.DefValue)

	productionFlag := cmd.Flags().Lookup("production")
	require.NotNil(t, productionFlag)
	assert.Equal(t, "false", productionFlag.DefValue)
}

// runServe fails fast on an unconfigured server descriptor: no
// lspbridge.yaml in the search path means server.command is empty,
// which Load rejects before a subprocess is ever spawned.
func TestRunServeFailsWithoutConfiguredCommand(t *testing.T) {
	err := runServe(t.TempDir(), ".", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

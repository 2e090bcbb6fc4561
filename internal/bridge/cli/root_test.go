package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "lspbridged", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	expected := []string{"version", "serve"}
	for _, name := range expected {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "expected command %q to be registered", name)
	}
}

func TestNewVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-01-01"
	GoVersion = "go1.23"

	cmd := NewVersionCommand()

	assert.Equal(t, "version", cmd.Use)
	require.NotNil(t, cmd.Run)

	// Run doesn't return anything to assert on, but it should not panic.
	cmd.Run(cmd, []string{})
}

func TestExecuteReturnsErrorForUnknownCommand(t *testing.T) {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs([]string{"no-such-command"})
	err := rootCmd.Execute()
	assert.Error(t, err)
}

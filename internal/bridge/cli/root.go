// Package cli implements the bridge's command-line surface: a cobra root
// command with a version command and a serve command, mirroring
// internal/cli/commands's NewRootCommand/Execute shape.
package cli

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information, set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand builds the bridge's command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lspbridged",
		Short: "Agent/LSP bridge daemon",
		Long: color.CyanString(`lspbridged bridges an agent-protocol tool surface onto a
spawned language server over LSP.

It spawns a configured language-server subprocess, speaks the Language
Server Protocol to it over stdio, and builds eight tool operations
(inspect, references, completion, diagnostics, outline, search, rename,
logs) on top. The serve command does not itself serve these tools to an
agent.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// NewVersionCommand reports build version information.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Print("lspbridged version: ")
			valueColor.Println(Version)
			titleColor.Print("Git commit: ")
			valueColor.Println(GitCommit)
			titleColor.Print("Build date: ")
			valueColor.Println(BuildDate)
			titleColor.Print("Go version: ")
			valueColor.Println(goVer)
		},
	}
}

// Execute runs the root command, printing a colored error on failure.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

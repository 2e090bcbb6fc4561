package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/p1va/lspbridge/internal/bridge/config"
	"github.com/p1va/lspbridge/internal/bridge/logging"
	"github.com/p1va/lspbridge/internal/bridge/session"
)

const shutdownGracePeriodCLI = 5 * time.Second

// NewServeCommand builds the `serve` subcommand: load the server
// descriptor, start a Session against it, and run until SIGINT or SIGTERM
// arrives, mirroring commands.NewLSPCommand's run-until-signal shape. A
// failed Start returns at once; a language-server exit after startup does
// not end the command.
func NewServeCommand() *cobra.Command {
	var configPath string
	var workspaceRoot string
	var production bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge session against a configured language server",
		Long: `Start the bridge: spawn the configured language server, perform the
initialize/initialized handshake, and keep the session running until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, workspaceRoot, production)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", ".", "directory to search for lspbridge.yaml")
	cmd.Flags().StringVar(&workspaceRoot, "workspace", ".", "workspace root passed to the language server")
	cmd.Flags().BoolVar(&production, "production", false, "use JSON structured logging instead of the development console encoder")

	return cmd
}

func runServe(configPath, workspaceRoot string, production bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New()
	if production {
		logger = logging.NewProduction()
	}
	defer logger.Sync() //nolint:errcheck

	absRoot, err := os.Getwd()
	if err == nil && workspaceRoot != "" && workspaceRoot != "." {
		absRoot = workspaceRoot
	}

	sess := session.New(&cfg.Server, absRoot, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGracePeriodCLI)
	defer shutdownCancel()
	return sess.Shutdown(shutdownCtx)
}

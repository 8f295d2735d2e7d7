package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/app"
	"github.com/kapu/tj-jpop-chart-go/internal/config"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	timeout time.Duration

	logger    *zap.Logger
	container *app.Container
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chartctl",
	Short: "TJ J-POP chart and Korean title review tool",
	Long: `chartctl maintains the TJ karaoke J-POP chart database.

It records daily chart snapshots, lists the confirmed chart pages, and drives
the review workflow that gives every song its Korean title.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		buildCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		container, err = app.Build(buildCtx, cfg, logger)
		if err != nil {
			logger.Error("Failed to assemble application services", zap.Error(err))
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(crawlCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

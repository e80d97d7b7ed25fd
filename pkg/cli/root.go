// pkg/cli/root.go
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rosbache/multiImageTextOverlay/internal/config"
	"github.com/rosbache/multiImageTextOverlay/internal/logger"
)

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	rootCmd := &cobra.Command{
		Use:   "geooverlay",
		Short: "Stamp geotagged photos with their capture metadata",
		Long: `A batch tool that copies JPEG images while compositing their embedded
capture metadata (timestamp, GPS position, altitude, heading) as a text
overlay. Originals and their embedded metadata are never modified.`,
	}

	// Global flags
	cfg := config.New()
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", "", "Also write logs to this file")

	// Add commands
	rootCmd.AddCommand(newProcessCommand(cfg))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/portaria/internal/app"
	"github.com/saturnino-fabrica-de-software/portaria/internal/capture"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the camera loop and the status API",
	Long: `Open the camera and poll the recogniser until Ctrl-C, or until 'q' is
pressed in the preview window.

MODE=attendance (default) records check-in and checkout in the attendance
log; MODE=zone counts crossings of the line at LINE_Y.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-preview", false, "Do not open the preview window (overrides PREVIEW)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if noPreview, _ := cmd.Flags().GetBool("no-preview"); noPreview {
		cfg.Preview = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cam, err := capture.Open(capture.Config{
		Device:      cfg.CameraDevice,
		CascadePath: cfg.CascadePath,
		Width:       cfg.FrameWidth,
		Height:      cfg.FrameHeight,
		Mirror:      true,
		Preview:     cfg.Preview,
	}, logger)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer cam.Close()

	opts := []app.Option{app.WithVersion(Version)}
	if cfg.Preview {
		opts = append(opts, app.WithDisplay(cam))
	}

	a, err := app.New(ctx, cfg, cam, logger, opts...)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

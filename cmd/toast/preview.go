package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/audio"
	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/preview"
	"github.com/jmylchreest/toaststack/internal/stack"
)

var previewOpts struct {
	slots   int
	sound   bool
	logFile string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Watch the notification stack in the terminal",
	Long: `Run the notification stack against an in-memory screen and draw it in
the terminal. Nothing is shown on the desktop; links are logged instead of
opened. Timing, queueing and the collapse animation follow the config file.

Key bindings:
  n           New notification
  l           New notification with a link
  b           Burst of five notifications
  enter       Click the bottom notification
  c           Close the bottom notification
  t           Close the top notification
  x           Close everything
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntVar(&previewOpts.slots, "slots", 4,
		"Number of notifications that fit on the simulated screen")
	previewCmd.Flags().BoolVar(&previewOpts.sound, "sound", false,
		"Play notification sounds")
	previewCmd.Flags().StringVar(&previewOpts.logFile, "log-file", "",
		"Write logs to this file (the terminal belongs to the preview)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewOpts.slots < 1 {
		return fmt.Errorf("--slots must be at least 1")
	}

	plog, closeLog, err := previewLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only the height matters: it decides how many slots fit.
	slotHeight := cfg.Height + cfg.Padding
	screen := geometry.Screen{
		Bounds:   geometry.Rect{Width: 1920, Height: previewOpts.slots*slotHeight + 40},
		WorkArea: geometry.Rect{Width: 1920, Height: previewOpts.slots * slotHeight},
	}

	var opts []stack.Option
	if previewOpts.sound {
		sound := audio.NewManager(cfg, plog)
		defer sound.Close()
		opts = append(opts, stack.WithSound(sound))
	}

	s := preview.NewSession(ctx, cfg, screen, plog, opts...)
	defer s.Close()

	p := tea.NewProgram(preview.New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}

func previewLogger() (*slog.Logger, func(), error) {
	if previewOpts.logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(previewOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { _ = f.Close() }, nil
}

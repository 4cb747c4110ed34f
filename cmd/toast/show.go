package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/notification"
	"github.com/jmylchreest/toaststack/internal/stack"
)

var showOpts struct {
	url     string
	icon    string
	sound   string
	timeout string
}

var showCmd = &cobra.Command{
	Use:   "show TITLE [BODY]",
	Short: "Show a single notification",
	Long: `Show a single notification and wait until it closes.

When the notification closes, the reason is printed to stdout:
  timeout      the display time expired
  close        the close button was pressed
  closeAll     toast was interrupted

Clicking the notification prints "clicked" and opens --url, if set.

Examples:
  toast show "Build finished" "All 142 tests passed"
  toast show "Deploy ready" --url https://ci.example.com/runs/7 --timeout 30s
  toast show "Reminder" --timeout -1   # stays until closed`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOpts.url, "url", "",
		"Link opened when the notification is clicked")
	showCmd.Flags().StringVar(&showOpts.icon, "icon", "",
		"Image shown next to the text (file path or icon name)")
	showCmd.Flags().StringVar(&showOpts.sound, "sound", "",
		"Sound file played when the notification appears")
	showCmd.Flags().StringVar(&showOpts.timeout, "timeout", "",
		"Display time, e.g. 10s or 2500 (milliseconds); negative keeps it open")
}

func runShow(cmd *cobra.Command, args []string) error {
	c, err := withTimeout(cfg, showOpts.timeout)
	if err != nil {
		return err
	}

	req := notification.Request{
		Title: args[0],
		Link:  showOpts.url,
		Icon:  showOpts.icon,
		Sound: showOpts.sound,
		OnClick: func(notification.ClickEvent) {
			fmt.Println("clicked")
		},
		OnClose: func(e notification.CloseEvent) {
			fmt.Println(e.Reason)
		},
	}
	if len(args) > 1 {
		req.Body = args[1]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDesktop(ctx, c, false, func(_ context.Context, s *stack.Coordinator) error {
		id := s.Notify(req)
		logger.Debug("notification submitted", "id", id)
		return nil
	})
}

// withTimeout returns cfg with its display time replaced by timeout, if set.
func withTimeout(cfg *config.Config, timeout string) (*config.Config, error) {
	if timeout == "" {
		return cfg, nil
	}
	var d config.Duration
	if err := d.UnmarshalText([]byte(timeout)); err != nil {
		return nil, fmt.Errorf("invalid --timeout: %w", err)
	}
	c := cfg.Apply(config.Patch{DisplayTime: &d})
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/notification"
	"github.com/jmylchreest/toaststack/internal/stack"
)

var runOpts struct {
	timeout string
	watch   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show notifications read from stdin",
	Long: `Read notifications from stdin, one JSON object per line, and show each
as it arrives. toast exits once stdin is closed and every notification has
closed.

Input fields: title, body, url, icon, sound.

Every callback is written to stdout as a JSON line:
  {"id":1,"event":"shown"}
  {"id":1,"event":"clicked"}
  {"id":1,"event":"closed","reason":"timeout"}

Examples:
  echo '{"title":"Backup done","body":"12 GB in 4m"}' | toast run
  tail -f events.jsonl | toast run --timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOpts.timeout, "timeout", "",
		"Display time, e.g. 10s or 2500 (milliseconds); negative keeps notifications open")
	runCmd.Flags().BoolVar(&runOpts.watch, "watch", true,
		"Apply config file changes while running")
}

// event is one line of run's output.
type event struct {
	ID     int64                    `json:"id"`
	Event  string                   `json:"event"`
	Reason notification.CloseReason `json:"reason,omitempty"`
}

// eventWriter serialises events from the GTK thread and the reader.
type eventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (w *eventWriter) write(e event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		logger.Warn("failed to write event", "error", err)
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	c, err := withTimeout(cfg, runOpts.timeout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &eventWriter{enc: json.NewEncoder(os.Stdout)}
	return runDesktop(ctx, c, runOpts.watch, func(ctx context.Context, s *stack.Coordinator) error {
		return feedRequests(ctx, os.Stdin, s, out)
	})
}

// feedRequests submits one notification per JSON line of r.
func feedRequests(ctx context.Context, r io.Reader, s *stack.Coordinator, out *eventWriter) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		req, err := parseRequest(line)
		if err != nil {
			logger.Warn("skipping invalid input line", "line", lineNo, "error", err)
			continue
		}
		req.OnShow = func(e notification.ShowEvent) {
			out.write(event{ID: e.ID, Event: "shown"})
		}
		req.OnClick = func(e notification.ClickEvent) {
			out.write(event{ID: e.ID, Event: "clicked"})
		}
		req.OnClose = func(e notification.CloseEvent) {
			out.write(event{ID: e.ID, Event: "closed", Reason: e.Reason})
		}

		id := s.Notify(req)
		logger.Debug("notification submitted", "id", id, "line", lineNo)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}

func parseRequest(line string) (notification.Request, error) {
	var req notification.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return req, err
	}
	if req.Title == "" && req.Body == "" {
		return req, fmt.Errorf("notification needs a title or a body")
	}
	return req, nil
}

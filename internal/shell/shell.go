// Package shell opens links with the user's preferred application.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalOpenURI   = "org.freedesktop.portal.OpenURI.OpenURI"
	fallbackCommand = "xdg-open"
)

// ErrInvalidURL is returned for links without a scheme.
var ErrInvalidURL = errors.New("invalid url")

// Opener opens a link outside the application.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// Shell opens links through the XDG desktop portal and falls back to
// xdg-open when the portal is unavailable.
type Shell struct {
	logger *slog.Logger

	portal func(ctx context.Context, link string) error
	spawn  func(ctx context.Context, name string, args ...string) error
}

// New creates a Shell using the session bus.
func New(logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		logger: logger,
		portal: openViaPortal,
		spawn:  spawnDetached,
	}
}

// Open opens link.
func (s *Shell) Open(ctx context.Context, link string) error {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, link)
	}

	err = s.portal(ctx, u.String())
	if err == nil {
		s.logger.Debug("opened link via portal", "url", link)
		return nil
	}
	s.logger.Debug("portal unavailable, falling back", "error", err, "command", fallbackCommand)

	if err := s.spawn(ctx, fallbackCommand, u.String()); err != nil {
		return fmt.Errorf("failed to open %s: %w", link, err)
	}
	return nil
}

func openViaPortal(ctx context.Context, link string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var handle dbus.ObjectPath
	err = conn.Object(portalDest, portalPath).CallWithContext(
		ctx,
		portalOpenURI,
		0,
		"", // parent window
		link,
		map[string]dbus.Variant{},
	).Store(&handle)
	if err != nil {
		return fmt.Errorf("OpenURI: %w", err)
	}
	return nil
}

// spawnDetached starts the command and reaps it in the background.
func spawnDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

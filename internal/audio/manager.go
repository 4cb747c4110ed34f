package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/toaststack/internal/config"
)

// Manager plays notification sounds off the caller's goroutine, falling
// back to the configured default when a notification names none.
type Manager struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	player   *Player
	fallback string
	enabled  bool
}

// NewManager creates a manager configured from cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger:  logger,
		player:  NewPlayer(logger),
		enabled: true,
	}
	m.Configure(cfg)
	return m
}

// Configure applies the sound and volume settings. Cached sounds are
// dropped so edited files are decoded again.
func (m *Manager) Configure(cfg *config.Config) {
	if cfg == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Volume) / 100.0)
	m.player.ClearCache()
	m.fallback = ""

	if cfg.Sound == "" {
		return
	}
	path := expandPath(cfg.Sound)
	if _, err := os.Stat(path); err != nil {
		m.logger.Warn("sound file not found", "path", path)
		return
	}
	if !Supported(path) {
		m.logger.Warn("unsupported sound format", "path", path)
		return
	}
	m.fallback = path
}

// SetEnabled turns playback on or off.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Resolve returns the file Play would use for a notification sound.
func (m *Manager) Resolve(sound string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return ""
	}
	if sound != "" {
		return sound
	}
	return m.fallback
}

// Play plays sound, or the configured default when sound is empty, in the
// background. Failures are logged.
func (m *Manager) Play(sound string) {
	path := m.Resolve(sound)
	if path == "" {
		return
	}
	go func() {
		if err := m.player.Play(path); err != nil {
			m.logger.Warn("failed to play sound", "path", path, "error", err)
		}
	}()
}

// Close releases the audio device.
func (m *Manager) Close() {
	m.player.Close()
}

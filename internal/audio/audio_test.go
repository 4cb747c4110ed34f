package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/config"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"ding.wav", true},
		{"DING.WAV", true},
		{"/usr/share/sounds/bell.ogg", true},
		{"chime.mp3", true},
		{"chime.flac", false},
		{"noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Supported(tt.path), tt.path)
	}
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(1.7)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-0.3)
	assert.Equal(t, 0.0, p.Volume())
	p.SetVolume(0.4)
	assert.InDelta(t, 0.4, p.Volume(), 1e-9)
}

func TestPlayer_Errors(t *testing.T) {
	p := NewPlayer(nil)
	assert.NoError(t, p.Play(""), "empty path is a no-op")
	assert.ErrorContains(t, p.Play("/nonexistent/x.flac"), "unsupported audio format")
	assert.ErrorContains(t, p.Play("/nonexistent/x.wav"), "failed to open sound file")
}

func TestVolumeToExponent(t *testing.T) {
	assert.InDelta(t, 0.0, volumeToExponent(1), 1e-9)
	assert.InDelta(t, -1.0, volumeToExponent(0.5), 1e-9)
	assert.InDelta(t, -2.0, volumeToExponent(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToExponent(0))
}

func TestManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	bell := filepath.Join(dir, "bell.wav")
	require.NoError(t, os.WriteFile(bell, []byte("RIFF"), 0644))

	cfg := config.Default()
	cfg.Sound = bell
	cfg.Volume = 50

	m := NewManager(cfg, nil)
	assert.Equal(t, bell, m.Resolve(""))
	assert.Equal(t, "other.ogg", m.Resolve("other.ogg"), "per-notification sound wins")
	assert.InDelta(t, 0.5, m.player.Volume(), 1e-9)

	m.SetEnabled(false)
	assert.Empty(t, m.Resolve("other.ogg"))
	m.SetEnabled(true)

	cfg.Sound = filepath.Join(dir, "missing.wav")
	m.Configure(cfg)
	assert.Empty(t, m.Resolve(""), "missing default sound is ignored")

	cfg.Sound = filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(cfg.Sound, nil, 0644))
	m.Configure(cfg)
	assert.Empty(t, m.Resolve(""), "unsupported default sound is ignored")
}

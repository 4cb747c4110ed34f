package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 65, cfg.Height)
	assert.Equal(t, 10, cfg.Padding)
	assert.Equal(t, 5, cfg.BorderRadius)
	assert.Equal(t, 5*time.Second, cfg.DisplayTime.Duration())
	assert.Equal(t, 5, cfg.AnimationSteps)
	assert.Equal(t, 5*time.Millisecond, cfg.AnimationStep.Duration())
	assert.False(t, cfg.AnimateInParallel)
	assert.True(t, cfg.Window.AlwaysOnTop)
	assert.True(t, cfg.Window.Transparent)
	assert.False(t, cfg.Window.Frame)
	assert.False(t, cfg.Window.ShowInTaskbar)
	assert.Equal(t, "#f0f0f0", cfg.Style.Container["background-color"])
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
width = 400
display_time = "8s"
animation_step = "10"
animate_in_parallel = true
app_icon = "/usr/share/icons/app.png"

[style.container]
background-color = "#202020"

[window]
frame = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 65, cfg.Height, "unset keys keep defaults")
	assert.Equal(t, 8*time.Second, cfg.DisplayTime.Duration())
	assert.Equal(t, 10*time.Millisecond, cfg.AnimationStep.Duration())
	assert.True(t, cfg.AnimateInParallel)
	assert.Equal(t, "/usr/share/icons/app.png", cfg.AppIcon)
	assert.Equal(t, "#202020", cfg.Style.Container["background-color"])
	assert.Equal(t, "8px", cfg.Style.Container["padding"], "style tables merge with defaults")
	assert.True(t, cfg.Window.Frame)
	assert.True(t, cfg.Window.AlwaysOnTop, "window flags not in the file keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "width = "},
		{"bad duration", `display_time = "soon"`},
		{"zero width", "width = 0"},
		{"volume too high", "volume = 150"},
		{"negative step", `animation_step = "-5ms"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsFields(t *testing.T) {
	cfg := Default()
	cfg.Width = 0
	cfg.Volume = -1

	err := cfg.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "Config.Width", verr.Fields[0].Field)
	assert.Equal(t, "min=1", verr.Fields[0].Rule)
	assert.Contains(t, err.Error(), "Config.Volume")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Padding = 4
	cfg.DisplayTime = Duration(-time.Millisecond)
	cfg.Style.Text["color"] = "#333"

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5s", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"5000", 5 * time.Second},
		{"0", 0},
		{"-1", -time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalText([]byte(tt.in)))
			assert.Equal(t, tt.want, d.Duration())
		})
	}

	var d Duration
	assert.Error(t, d.UnmarshalText([]byte("later")))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "config.toml", filepath.Base(ConfigPath()))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(ConfigPath())))
	assert.Equal(t, filepath.Join(filepath.Dir(ConfigPath()), "templates"), TemplatesDir())

	dir, err := AppPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}

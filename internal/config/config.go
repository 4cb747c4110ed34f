// Package config handles toaststack configuration: defaults, the TOML file,
// partial updates and validation.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "toaststack"

// Default configuration values.
const (
	DefaultWidth          = 300
	DefaultHeight         = 65
	DefaultPadding        = 10
	DefaultBorderRadius   = 5
	DefaultDisplayTime    = 5 * time.Second
	DefaultAnimationSteps = 5
	DefaultAnimationStep  = 5 * time.Millisecond
	DefaultVolume         = 80
)

// Config is the complete toaststack configuration.
type Config struct {
	Width             int      `toml:"width" yaml:"width" validate:"min=1,max=4096"`
	Height            int      `toml:"height" yaml:"height" validate:"min=1,max=4096"`
	Padding           int      `toml:"padding" yaml:"padding" validate:"min=1,max=1024"`
	BorderRadius      int      `toml:"border_radius" yaml:"border_radius" validate:"min=0"`
	DisplayTime       Duration `toml:"display_time" yaml:"display_time"`        // Negative: never expire
	AnimationSteps    int      `toml:"animation_steps" yaml:"animation_steps" validate:"min=1,max=1000"`
	AnimationStep     Duration `toml:"animation_step" yaml:"animation_step"`     // Delay between slide ticks
	AnimateInParallel bool     `toml:"animate_in_parallel" yaml:"animate_in_parallel"`
	AppIcon           string   `toml:"app_icon" yaml:"app_icon"`
	TemplatePath      string   `toml:"template_path" yaml:"template_path"`       // Empty: built-in layout
	Screen            int      `toml:"screen" yaml:"screen" validate:"min=0"` // Index into the monitor list
	Sound             string   `toml:"sound" yaml:"sound"`
	Volume            int      `toml:"volume" yaml:"volume" validate:"min=0,max=100"`

	Style  StyleConfig  `toml:"style" yaml:"style"`
	Window WindowConfig `toml:"window" yaml:"window"`
}

// StyleConfig holds CSS declarations (property -> value) per element.
type StyleConfig struct {
	Container map[string]string `toml:"container" yaml:"container"`
	AppIcon   map[string]string `toml:"app_icon" yaml:"app_icon"`
	Image     map[string]string `toml:"image" yaml:"image"`
	Close     map[string]string `toml:"close" yaml:"close"`
	Text      map[string]string `toml:"text" yaml:"text"`
}

// WindowConfig holds the creation flags of notification windows.
type WindowConfig struct {
	AlwaysOnTop            bool `toml:"always_on_top" yaml:"always_on_top"`
	VisibleOnAllWorkspaces bool `toml:"visible_on_all_workspaces" yaml:"visible_on_all_workspaces"`
	ShowInTaskbar          bool `toml:"show_in_taskbar" yaml:"show_in_taskbar"`
	Frame                  bool `toml:"frame" yaml:"frame"`
	Transparent            bool `toml:"transparent" yaml:"transparent"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Padding:        DefaultPadding,
		BorderRadius:   DefaultBorderRadius,
		DisplayTime:    Duration(DefaultDisplayTime),
		AnimationSteps: DefaultAnimationSteps,
		AnimationStep:  Duration(DefaultAnimationStep),
		Volume:         DefaultVolume,
		Style:          DefaultStyle(),
		Window: WindowConfig{
			AlwaysOnTop:            true,
			VisibleOnAllWorkspaces: true,
			ShowInTaskbar:          false,
			Frame:                  false,
			Transparent:            true,
		},
	}
}

// DefaultStyle returns the built-in element styles.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		Container: map[string]string{
			"background-color": "#f0f0f0",
			"padding":          "8px",
			"border":           "1px solid #CCC",
			"font-family":      "Arial",
			"font-size":        "12px",
		},
		AppIcon: map[string]string{
			"min-width":    "40px",
			"min-height":   "40px",
			"margin-right": "10px",
		},
		Image: map[string]string{
			"min-width":   "40px",
			"min-height":  "40px",
			"margin-left": "10px",
		},
		Close: map[string]string{
			"margin-top":   "1px",
			"margin-right": "3px",
			"font-size":    "11px",
			"color":        "#CCC",
		},
		Text: map[string]string{
			"margin": "0",
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Style = c.Style.clone()
	return &out
}

func (s StyleConfig) clone() StyleConfig {
	return StyleConfig{
		Container: maps.Clone(s.Container),
		AppIcon:   maps.Clone(s.AppIcon),
		Image:     maps.Clone(s.Image),
		Close:     maps.Clone(s.Close),
		Text:      maps.Clone(s.Text),
	}
}

// ConfigPath returns the path to the config file under XDG_CONFIG_HOME.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// TemplatesDir returns the directory searched for user layout templates.
func TemplatesDir() string {
	return filepath.Join(xdg.ConfigHome, AppName, "templates")
}

// AppPath returns the directory containing the running executable.
func AppPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Load loads the configuration from path, or from ConfigPath when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays TOML data onto the defaults and validates the result.
// Style tables merge with the default declarations key by key.
func Parse(data []byte) (*Config, error) {
	// [window] replaces the whole table, so missing flags keep their defaults
	p := Patch{Window: &Default().Window}
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default().Apply(p)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// FieldError is one failed constraint.
type FieldError struct {
	Field string
	Rule  string
	Value any
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s=%v violates %s", f.Field, f.Value, f.Rule))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		verr.cause = fieldErrs
		for _, fe := range fieldErrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			verr.Fields = append(verr.Fields, FieldError{
				Field: fe.Namespace(),
				Rule:  rule,
				Value: fe.Value(),
			})
		}
	}

	if c.AnimationStep < 0 {
		verr.Fields = append(verr.Fields, FieldError{
			Field: "Config.AnimationStep",
			Rule:  "min=0",
			Value: c.AnimationStep.Duration(),
		})
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

package config

import "maps"

// Patch is a partial configuration. Nil fields keep the prior value; style
// tables merge key by key.
type Patch struct {
	Width             *int      `toml:"width"`
	Height            *int      `toml:"height"`
	Padding           *int      `toml:"padding"`
	BorderRadius      *int      `toml:"border_radius"`
	DisplayTime       *Duration `toml:"display_time"`
	AnimationSteps    *int      `toml:"animation_steps"`
	AnimationStep     *Duration `toml:"animation_step"`
	AnimateInParallel *bool     `toml:"animate_in_parallel"`
	AppIcon           *string   `toml:"app_icon"`
	TemplatePath      *string   `toml:"template_path"`
	Screen            *int      `toml:"screen"`
	Sound             *string   `toml:"sound"`
	Volume            *int      `toml:"volume"`

	Style  StyleConfig   `toml:"style"`
	Window *WindowConfig `toml:"window"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// Apply returns a copy of c with p merged in. c is not modified.
func (c *Config) Apply(p Patch) *Config {
	out := c.Clone()

	setIf(&out.Width, p.Width)
	setIf(&out.Height, p.Height)
	setIf(&out.Padding, p.Padding)
	setIf(&out.BorderRadius, p.BorderRadius)
	setIf(&out.DisplayTime, p.DisplayTime)
	setIf(&out.AnimationSteps, p.AnimationSteps)
	setIf(&out.AnimationStep, p.AnimationStep)
	setIf(&out.AnimateInParallel, p.AnimateInParallel)
	setIf(&out.AppIcon, p.AppIcon)
	setIf(&out.TemplatePath, p.TemplatePath)
	setIf(&out.Screen, p.Screen)
	setIf(&out.Sound, p.Sound)
	setIf(&out.Volume, p.Volume)
	setIf(&out.Window, p.Window)

	out.Style.Container = mergeStyle(out.Style.Container, p.Style.Container)
	out.Style.AppIcon = mergeStyle(out.Style.AppIcon, p.Style.AppIcon)
	out.Style.Image = mergeStyle(out.Style.Image, p.Style.Image)
	out.Style.Close = mergeStyle(out.Style.Close, p.Style.Close)
	out.Style.Text = mergeStyle(out.Style.Text, p.Style.Text)

	return out
}

// Patch returns a patch that sets every field of c.
func (c *Config) Patch() Patch {
	w := c.Window
	return Patch{
		Width:             Ptr(c.Width),
		Height:            Ptr(c.Height),
		Padding:           Ptr(c.Padding),
		BorderRadius:      Ptr(c.BorderRadius),
		DisplayTime:       Ptr(c.DisplayTime),
		AnimationSteps:    Ptr(c.AnimationSteps),
		AnimationStep:     Ptr(c.AnimationStep),
		AnimateInParallel: Ptr(c.AnimateInParallel),
		AppIcon:           Ptr(c.AppIcon),
		TemplatePath:      Ptr(c.TemplatePath),
		Screen:            Ptr(c.Screen),
		Sound:             Ptr(c.Sound),
		Volume:            Ptr(c.Volume),
		Style:             c.Style.clone(),
		Window:            &w,
	}
}

// IsZero reports whether p changes nothing.
func (p Patch) IsZero() bool {
	return p.Width == nil && p.Height == nil && p.Padding == nil &&
		p.BorderRadius == nil && p.DisplayTime == nil && p.AnimationSteps == nil &&
		p.AnimationStep == nil && p.AnimateInParallel == nil && p.AppIcon == nil &&
		p.TemplatePath == nil && p.Screen == nil && p.Sound == nil &&
		p.Volume == nil && p.Window == nil &&
		len(p.Style.Container) == 0 && len(p.Style.AppIcon) == 0 &&
		len(p.Style.Image) == 0 && len(p.Style.Close) == 0 && len(p.Style.Text) == 0
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// mergeStyle overlays patch onto base. An empty value removes the property.
func mergeStyle(base, patch map[string]string) map[string]string {
	if len(patch) == 0 {
		return base
	}
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string, len(patch))
	}
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApply_UnsetKeysKeepPriorValues(t *testing.T) {
	base := Default()
	base.AppIcon = "app.png"

	got := base.Apply(Patch{
		Width:       Ptr(420),
		DisplayTime: Ptr(Duration(2 * time.Second)),
	})

	assert.Equal(t, 420, got.Width)
	assert.Equal(t, 2*time.Second, got.DisplayTime.Duration())
	assert.Equal(t, base.Height, got.Height)
	assert.Equal(t, "app.png", got.AppIcon)
	assert.Equal(t, base.Window, got.Window)

	assert.Equal(t, 300, base.Width, "Apply must not modify the receiver")
}

func TestApply_StyleMergesPerKey(t *testing.T) {
	base := Default()

	got := base.Apply(Patch{Style: StyleConfig{
		Container: map[string]string{"background-color": "#000", "padding": ""},
		Close:     map[string]string{"color": "red"},
	}})

	assert.Equal(t, "#000", got.Style.Container["background-color"])
	assert.NotContains(t, got.Style.Container, "padding", "empty value removes the property")
	assert.Equal(t, "Arial", got.Style.Container["font-family"])
	assert.Equal(t, "red", got.Style.Close["color"])
	assert.Equal(t, "11px", got.Style.Close["font-size"])

	assert.Equal(t, "#f0f0f0", base.Style.Container["background-color"])
	assert.Equal(t, "8px", base.Style.Container["padding"])
}

func TestApply_SequentialPatchesAccumulate(t *testing.T) {
	cfg := Default().
		Apply(Patch{Width: Ptr(100)}).
		Apply(Patch{Height: Ptr(40)}).
		Apply(Patch{})

	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestPatch_FullRoundTrip(t *testing.T) {
	src := Default()
	src.Width = 123
	src.Sound = "ding.wav"
	src.Window.Frame = true

	p := src.Patch()
	assert.False(t, p.IsZero())
	assert.Equal(t, src, Default().Apply(p))
	assert.True(t, Patch{}.IsZero())
}

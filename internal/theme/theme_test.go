package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toaststack/internal/config"
)

func TestBaseCSS(t *testing.T) {
	css := BaseCSS()
	assert.Contains(t, css, "."+ClassContainer)
	assert.Contains(t, css, "window."+ClassWindow)
}

func TestStylesheet_Defaults(t *testing.T) {
	css := Stylesheet(config.Default())

	assert.True(t, strings.HasPrefix(css, BaseCSS()))
	assert.Contains(t, css, ".toast-container {\n  background-color: #f0f0f0;\n  border: 1px solid #CCC;\n  border-radius: 5px;\n")
	assert.Contains(t, css, "  min-width: 300px;\n")
	assert.Contains(t, css, "  min-height: 65px;\n")
	assert.Contains(t, css, ".toast-close {\n")
	assert.Contains(t, css, "  color: #CCC;\n")
	assert.Contains(t, css, ".toast-appicon {\n")
	assert.Contains(t, css, ".toast-image {\n")
	assert.Contains(t, css, ".toast-text {\n  margin: 0;\n}\n")
}

func TestStylesheet_ConfiguredOverridesComputed(t *testing.T) {
	cfg := config.Default().Apply(config.Patch{
		BorderRadius: config.Ptr(12),
		Style: config.StyleConfig{
			Container: map[string]string{"min-width": "10em"},
		},
	})

	css := Stylesheet(cfg)
	assert.Contains(t, css, "border-radius: 12px;")
	assert.Contains(t, css, "min-width: 10em;")
	assert.NotContains(t, css, "min-width: 300px;")
}

func TestStylesheet_SkipsEmptyRules(t *testing.T) {
	cfg := config.Default()
	cfg.Style.Image = nil

	css := Stylesheet(cfg)
	assert.NotContains(t, css, ".toast-image {")
}

func TestStylesheet_Deterministic(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, Stylesheet(cfg), Stylesheet(cfg.Clone()))
}

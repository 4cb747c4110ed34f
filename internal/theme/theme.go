package theme

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/toaststack/internal/config"
)

// CSS classes carried by the elements of a notification window.
const (
	ClassWindow    = "toast-window"
	ClassContainer = "toast-container"
	ClassAppIcon   = "toast-appicon"
	ClassImage     = "toast-image"
	ClassClose     = "toast-close"
	ClassText      = "toast-text"
	ClassTitle     = "toast-title"
	ClassMessage   = "toast-message"
	ClassClickable = "clickable"
)

// Stylesheet renders the stylesheet for windows built from cfg: the base
// rules, then one rule per element with its configured declarations. The
// container rule also carries the box size and border radius.
func Stylesheet(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString(BaseCSS())
	b.WriteString("\n")

	container := map[string]string{
		"border-radius": px(cfg.BorderRadius),
		"min-width":     px(cfg.Width),
		"min-height":    px(cfg.Height),
	}
	for k, v := range cfg.Style.Container {
		container[k] = v
	}

	writeRule(&b, ClassContainer, container)
	writeRule(&b, ClassAppIcon, cfg.Style.AppIcon)
	writeRule(&b, ClassImage, cfg.Style.Image)
	writeRule(&b, ClassClose, cfg.Style.Close)
	writeRule(&b, ClassText, cfg.Style.Text)

	return b.String()
}

// writeRule writes a rule with declarations sorted by property, so equal
// configs give byte-identical stylesheets.
func writeRule(b *strings.Builder, class string, decls map[string]string) {
	if len(decls) == 0 {
		return
	}

	props := make([]string, 0, len(decls))
	for k := range decls {
		props = append(props, k)
	}
	slices.Sort(props)

	fmt.Fprintf(b, ".%s {\n", class)
	for _, p := range props {
		fmt.Fprintf(b, "  %s: %s;\n", p, decls[p])
	}
	b.WriteString("}\n")
}

func px(v int) string {
	return fmt.Sprintf("%dpx", v)
}

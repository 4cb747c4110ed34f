package theme

import (
	"embed"
)

//go:embed themes/*.css
var embeddedThemes embed.FS

// BaseCSS returns the rules every notification window gets before the
// configured styles.
func BaseCSS() string {
	data, err := embeddedThemes.ReadFile("themes/base.css")
	if err != nil {
		return ""
	}
	return string(data)
}

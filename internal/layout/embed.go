package layout

import (
	"embed"
	"strings"
)

//go:embed templates/*.xml
var EmbeddedTemplates embed.FS

// GetEmbeddedTemplate returns an embedded template by name.
// The name should not include the .xml extension.
func GetEmbeddedTemplate(name string) (*Layout, bool) {
	data, err := EmbeddedTemplates.ReadFile("templates/" + name + ".xml")
	if err != nil {
		return nil, false
	}

	l, err := ParseTemplateString(string(data))
	if err != nil {
		return nil, false
	}
	l.Source = BuiltinPrefix + name
	return l, true
}

// ListEmbeddedTemplates returns the names of all embedded templates.
func ListEmbeddedTemplates() []string {
	entries, err := EmbeddedTemplates.ReadDir("templates")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".xml") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".xml"))
		}
	}
	return names
}

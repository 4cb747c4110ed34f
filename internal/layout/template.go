// Package layout parses the XML templates that describe what a notification
// window contains and in which order.
package layout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BuiltinPrefix marks template paths that name an embedded template.
const BuiltinPrefix = "builtin:"

// DefaultName is the embedded template used when no path is configured.
const DefaultName = "default"

// ElementType identifies the type of layout element.
type ElementType string

const (
	ElementTypeAppIcon ElementType = "appicon"
	ElementTypeTitle   ElementType = "title"
	ElementTypeMessage ElementType = "message"
	ElementTypeImage   ElementType = "image"
	ElementTypeClose   ElementType = "close"
	ElementTypeText    ElementType = "text"
	ElementTypeBox     ElementType = "box"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"appicon": ElementTypeAppIcon,
	"title":   ElementTypeTitle,
	"message": ElementTypeMessage,
	"image":   ElementTypeImage,
	"close":   ElementTypeClose,
	"text":    ElementTypeText,
	"box":     ElementTypeBox,
}

// ErrNoPopup is returned for documents without a <popup> root.
var ErrNoPopup = errors.New("template has no <popup> element")

// Layout is a parsed template ready for building a window.
type Layout struct {
	Source   string // File path or builtin:<name>
	Elements []Element
}

// Element is a single element in the layout.
type Element struct {
	Type       ElementType
	Attributes map[string]string
	Children   []Element
}

// Has reports whether an element of type t appears anywhere in the layout.
func (l *Layout) Has(t ElementType) bool {
	return has(l.Elements, t)
}

func has(elems []Element, t ElementType) bool {
	for _, e := range elems {
		if e.Type == t || has(e.Children, t) {
			return true
		}
	}
	return false
}

// ParseTemplate parses an XML layout template from a reader.
func ParseTemplate(r io.Reader) (*Layout, error) {
	decoder := xml.NewDecoder(r)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, ErrNoPopup
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "popup" {
			elements, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			return &Layout{Elements: elements}, nil
		}
	}
}

// parseElements recursively parses child elements up to the parent's end tag.
func parseElements(decoder *xml.Decoder) ([]Element, error) {
	var elements []Element

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[name]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", name)
			}

			elem := Element{
				Type:       elemType,
				Attributes: make(map[string]string, len(t.Attr)),
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value
			}

			children, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			elem.Children = children
			elements = append(elements, elem)

		case xml.EndElement:
			return elements, nil
		}
	}
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*Layout, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()

	l, err := ParseTemplate(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Source = path
	return l, nil
}

// Loader resolves template paths. Bare names are looked up in the user
// templates directory before the embedded set.
type Loader struct {
	templatesDir string
}

// NewLoader creates a new template loader.
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// Resolve loads the template that path refers to:
//   - "" : the embedded default
//   - "builtin:<name>" : an embedded template
//   - a path containing a separator or ending in .xml : that file
//   - any other string : <templatesDir>/<name>.xml, then the embedded one
func (l *Loader) Resolve(path string) (*Layout, error) {
	if path == "" {
		path = BuiltinPrefix + DefaultName
	}

	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		if t, ok := GetEmbeddedTemplate(name); ok {
			return t, nil
		}
		return nil, fmt.Errorf("layout template not found: %s", path)
	}

	if strings.ContainsRune(path, filepath.Separator) || strings.HasSuffix(path, ".xml") {
		return LoadTemplate(path)
	}

	if l.templatesDir != "" {
		candidate := filepath.Join(l.templatesDir, path+".xml")
		if _, err := os.Stat(candidate); err == nil {
			return LoadTemplate(candidate)
		}
	}
	if t, ok := GetEmbeddedTemplate(path); ok {
		return t, nil
	}
	return nil, fmt.Errorf("layout template not found: %s", path)
}

// List returns the names of every template Resolve can find by name, user
// templates first.
func (l *Loader) List() []string {
	seen := make(map[string]bool)
	var names []string

	if l.templatesDir != "" {
		entries, _ := os.ReadDir(l.templatesDir)
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".xml")
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range ListEmbeddedTemplates() {
		if !seen[name] {
			names = append(names, BuiltinPrefix+name)
		}
	}
	return names
}

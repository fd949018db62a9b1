// Package templates provides embedded config templates for profup init.
package templates

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adamancini/profup/internal/config"
)

//go:embed default.yaml default.toml
var templatesFS embed.FS

// Template is a config file template for one format.
type Template struct {
	Name    string
	Format  config.Format
	Content []byte
}

// List returns the embedded template file names, sorted.
func List() []string {
	entries, err := templatesFS.ReadDir(".")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Get returns a template by file name, e.g. "default.toml".
func Get(name string) (*Template, error) {
	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("template '%s' not found: %w", name, err)
	}

	format, err := config.ParseFormat(strings.TrimPrefix(path.Ext(name), "."))
	if err != nil {
		return nil, fmt.Errorf("template '%s': %w", name, err)
	}

	return &Template{Name: name, Format: format, Content: content}, nil
}

// ForFormat returns the default template for a config format.
func ForFormat(format config.Format) (*Template, error) {
	switch format {
	case config.FormatYAML, config.FormatTOML:
		return Get("default." + format.String())
	default:
		return nil, fmt.Errorf("no template for format %s", format)
	}
}

package server

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ParseTemplate parses a single template from the embedded filesystem.
// Handlers call this once at construction, not per request.
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(templateFiles, "templates/"+name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

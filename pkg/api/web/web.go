// Package web holds the server-rendered screens of the panel.
package web

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"join":  strings.Join,
}

// Templates parses the embedded screen templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.tmpl")
}

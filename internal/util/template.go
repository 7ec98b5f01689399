package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// promptFuncs are available to every prompt template.
var promptFuncs = template.FuncMap{
	"default": func(fallback, val any) any {
		if val == nil || val == "" {
			return fallback
		}
		return val
	},
	"join": func(sep string, items []string) string { return strings.Join(items, sep) },
	"json": func(v any) string {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	},
}

// Template is a parsed prompt. Prompts are plain text, so text/template is
// used and nothing is HTML escaped.
type Template struct {
	tmpl *template.Template
}

// ParseTemplate parses text once so it can be rendered per request.
func ParseTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// MustParseTemplate is ParseTemplate for package level prompt variables.
func MustParseTemplate(name, text string) *Template {
	t, err := ParseTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string { return t.tmpl.Name() }

// Render executes the template against data.
func (t *Template) Render(data map[string]any) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// Package prompts holds the model-facing prompt templates and the small
// builder that renders them.
package prompts

import (
	"fmt"
	"strings"
)

// Template is a named block of prompt text with {{key}} placeholders.
type Template struct {
	Name string
	Text string
}

// templates is populated by init functions and read-only afterwards.
var templates = map[string]Template{}

func register(t Template) {
	templates[t.Name] = t
}

// Builder renders a registered template together with extra sections
// and variable substitutions.
type Builder struct {
	sections []string
	vars     map[string]string
}

// NewBuilder starts a builder from a registered template.
func NewBuilder(name string) (*Builder, error) {
	t, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt template: %s", name)
	}
	return &Builder{
		sections: []string{t.Text},
		vars:     make(map[string]string),
	}, nil
}

// Section appends a paragraph after the template text.
func (b *Builder) Section(text string) *Builder {
	b.sections = append(b.sections, text)
	return b
}

// Var binds a {{key}} placeholder to its value.
func (b *Builder) Var(key, value string) *Builder {
	b.vars[key] = value
	return b
}

// Render joins the sections with blank lines and substitutes every
// bound variable.
func (b *Builder) Render() string {
	out := strings.Join(b.sections, "\n\n")
	for key, value := range b.vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

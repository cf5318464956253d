package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

const DefaultTemplate = `{{.Description}}, {{.Scenario}}`

// Builder renders a concept into image prompt text.
type Builder struct {
	tmpl *template.Template
}

func NewBuilder(text string) (*Builder, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	return &Builder{tmpl: tmpl}, nil
}

func (b *Builder) Build(c Concept) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/promobot/internal/log"
)

//go:embed assets/gallery.html
var galleryTmpl string

type Item struct {
	Image   string
	Concept string
	Prompt  string
	Seed    uint32
	Style   string
	Sampler string
}

type Params struct {
	Date     string
	Product  string
	Audience string
	Items    []Item
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("gallery").Parse(galleryTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating gallery page", "items", len(params.Items))

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}

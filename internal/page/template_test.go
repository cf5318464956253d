package page

import (
	"context"
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	var tmpl Templator
	html, err := tmpl.Template(context.Background(), Params{
		Date:     "20261019",
		Product:  "Red <Shoe>",
		Audience: "weekend joggers",
		Items: []Item{{
			Image:   "image_20261019120000_1_K_DPMPP_2M_0_7_30_photographic.jpg",
			Concept: "Beach",
			Prompt:  "a red shoe on sand",
			Seed:    1,
			Style:   "photographic",
			Sampler: "K_DPMPP_2M",
		}},
	})
	if err != nil {
		t.Fatalf("Template: %v", err)
	}

	page := string(html)
	for _, want := range []string{
		"Red &lt;Shoe&gt;",
		"For weekend joggers",
		`src="image_20261019120000_1_K_DPMPP_2M_0_7_30_photographic.jpg"`,
		"seed 1",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "No images were generated") {
		t.Error("empty state rendered with items present")
	}
}

func TestTemplateEmpty(t *testing.T) {
	var tmpl Templator
	html, err := tmpl.Template(context.Background(), Params{Date: "20261019", Product: "mug"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "No images were generated") {
		t.Error("empty state missing")
	}
}

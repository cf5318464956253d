package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Concept is one marketing scene proposed by a language model.
type Concept struct {
	Concept     string `json:"concept"`
	Description string `json:"description"`
	Scenario    string `json:"scenario"`
}

// Brief is what a campaign starts from.
type Brief struct {
	Product  string `json:"product"`
	Audience string `json:"audience,omitempty"`
	Count    int    `json:"count,omitempty"`
}

const DefaultCount = 3

type Conceptualizer interface {
	Concepts(context.Context, Brief) ([]Concept, error)
}

const conceptSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["concept", "description", "scenario"],
		"properties": {
			"concept": {"type": "string", "pattern": "\\S"},
			"description": {"type": "string", "pattern": "\\S"},
			"scenario": {"type": "string", "pattern": "\\S"}
		}
	}
}`

var schema = jsonschema.MustCompileString("concepts.json", conceptSchema)

var ErrNoConcepts = errors.New("model output contained no concept list")

var instructionTmpl = template.Must(template.New("instruction").Parse(
	`You are an art director planning a marketing campaign.
Propose {{.Count}} distinct image concepts for the product "{{.Product}}"{{if .Audience}} aimed at {{.Audience}}{{end}}.
Each concept needs a short label, a visual description of the product in the shot, and the scenario or setting around it.
Respond only with a JSON array of objects with the keys "concept", "description" and "scenario".`))

func instruction(b Brief) (string, error) {
	var buf bytes.Buffer
	if err := instructionTmpl.Execute(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (b Brief) withDefaults() Brief {
	if b.Count <= 0 {
		b.Count = DefaultCount
	}
	return b
}

// ParseConcepts extracts the JSON array from model output, validates it and
// keeps at most limit entries when limit is positive.
func ParseConcepts(text string, limit int) ([]Concept, error) {
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, ErrNoConcepts
	}
	raw := []byte(text[start : end+1])

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConcepts, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid concepts: %w", err)
	}

	var concepts []Concept
	if err := json.Unmarshal(raw, &concepts); err != nil {
		return nil, err
	}
	if limit > 0 && len(concepts) > limit {
		concepts = concepts[:limit]
	}
	return concepts, nil
}

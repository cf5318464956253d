package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/promobot/internal/log"
	"github.com/google/generative-ai-go/genai"
)

type ContentGenerator interface {
	GenerateContent(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiConceptualizer uses a genai model, usually client.GenerativeModel(name).
type GeminiConceptualizer struct {
	Model ContentGenerator
	Name  string
}

func (c *GeminiConceptualizer) Concepts(ctx context.Context, brief Brief) ([]Concept, error) {
	brief = brief.withDefaults()
	log := log.FromContextOrDiscard(ctx).WithGroup("conceptualizer").With("model", c.Name, "product", brief.Product)
	log.Info("requesting concepts", "count", brief.Count)

	text, err := instruction(brief)
	if err != nil {
		return nil, err
	}
	resp, err := c.Model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("concept generation: no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return ParseConcepts(sb.String(), brief.Count)
}

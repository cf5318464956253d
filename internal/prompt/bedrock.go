package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmorgan81/promobot/internal/invoke"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/samber/lo"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BedrockConceptualizer asks an Anthropic model hosted on Bedrock for
// concepts.
type BedrockConceptualizer struct {
	Invoker     invoke.Invoker
	ModelID     string
	MaxTokens   int
	Temperature float64
}

func (c *BedrockConceptualizer) Concepts(ctx context.Context, brief Brief) ([]Concept, error) {
	brief = brief.withDefaults()
	logger := log.FromContextOrDiscard(ctx).WithGroup("conceptualizer").With("model", c.ModelID, "product", brief.Product)
	logger.Info("requesting concepts", "count", brief.Count)

	text, err := instruction(brief)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        lo.Ternary(c.MaxTokens > 0, c.MaxTokens, 2048),
		Temperature:      c.Temperature,
		Messages:         []anthropicMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return nil, err
	}

	out, err := c.Invoker.Invoke(ctx, c.ModelID, body)
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decoding concept response: %w", err)
	}
	var sb strings.Builder
	for _, part := range resp.Content {
		if part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}

	concepts, err := ParseConcepts(sb.String(), brief.Count)
	if err != nil {
		logger.Warn("unusable concept response", "stop_reason", resp.StopReason, log.Err(err))
		return nil, err
	}
	logger.Info("received concepts", "count", len(concepts))
	return concepts, nil
}

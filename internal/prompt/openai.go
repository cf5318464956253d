package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorgan81/promobot/internal/log"
	"github.com/sashabaranov/go-openai"
)

type ChatCompleter interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIConceptualizer struct {
	Client      ChatCompleter
	Model       string
	Temperature float32
}

func (c *OpenAIConceptualizer) Concepts(ctx context.Context, brief Brief) ([]Concept, error) {
	brief = brief.withDefaults()
	log := log.FromContextOrDiscard(ctx).WithGroup("conceptualizer").With("model", c.Model, "product", brief.Product)
	log.Info("requesting concepts", "count", brief.Count)

	text, err := instruction(brief)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("concept generation: no choices returned")
	}

	return ParseConcepts(resp.Choices[0].Message.Content, brief.Count)
}

package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dmorgan81/promobot/internal/invoke"
	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

const modelOutput = `[{"concept":"Beach","description":"a red shoe","scenario":"on the sand"},` +
	`{"concept":"Gym","description":"a red shoe","scenario":"on a treadmill"}]`

type fakeInvoker struct {
	modelID string
	body    []byte
	out     []byte
	err     error
}

func (f *fakeInvoker) Invoke(_ context.Context, modelID string, body []byte) ([]byte, error) {
	f.modelID, f.body = modelID, body
	return f.out, f.err
}

func TestBedrockConceptualizer(t *testing.T) {
	out, _ := json.Marshal(map[string]any{
		"content":     []map[string]string{{"type": "text", "text": "Sure!\n" + modelOutput}},
		"stop_reason": "end_turn",
	})
	inv := &fakeInvoker{out: out}
	c := &BedrockConceptualizer{Invoker: inv, ModelID: "anthropic.claude-3-haiku-20240307-v1:0"}

	concepts, err := c.Concepts(context.Background(), Brief{Product: "red shoe", Count: 2})
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if len(concepts) != 2 || concepts[1].Scenario != "on a treadmill" {
		t.Errorf("concepts = %+v", concepts)
	}
	if inv.modelID != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("model = %s", inv.modelID)
	}

	var req anthropicRequest
	if err := json.Unmarshal(inv.body, &req); err != nil {
		t.Fatal(err)
	}
	if req.AnthropicVersion != "bedrock-2023-05-31" || req.MaxTokens != 2048 {
		t.Errorf("request = %+v", req)
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, `"red shoe"`) {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestBedrockConceptualizerErrors(t *testing.T) {
	fault := &invoke.Error{Code: "AccessDeniedException", Message: "denied"}
	c := &BedrockConceptualizer{Invoker: &fakeInvoker{err: fault}, ModelID: "m"}
	if _, err := c.Concepts(context.Background(), Brief{Product: "shoe"}); !errors.Is(err, fault) {
		t.Errorf("expected invoke error, got %v", err)
	}

	refusal, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": "I'd rather not."}},
	})
	c = &BedrockConceptualizer{Invoker: &fakeInvoker{out: refusal}, ModelID: "m"}
	if _, err := c.Concepts(context.Background(), Brief{Product: "shoe"}); !errors.Is(err, ErrNoConcepts) {
		t.Errorf("expected ErrNoConcepts, got %v", err)
	}
}

type fakeChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestOpenAIConceptualizer(t *testing.T) {
	chat := &fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: modelOutput}}},
	}}
	c := &OpenAIConceptualizer{Client: chat, Model: openai.GPT4}

	concepts, err := c.Concepts(context.Background(), Brief{Product: "red shoe", Count: 1})
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if len(concepts) != 1 || concepts[0].Concept != "Beach" {
		t.Errorf("concepts = %+v", concepts)
	}
	if chat.req.Model != openai.GPT4 || chat.req.Messages[0].Role != openai.ChatMessageRoleUser {
		t.Errorf("request = %+v", chat.req)
	}

	c.Client = &fakeChat{}
	if _, err := c.Concepts(context.Background(), Brief{Product: "red shoe"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

type fakeGemini struct {
	parts []genai.Part
	resp  *genai.GenerateContentResponse
}

func (f *fakeGemini) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, nil
}

func TestGeminiConceptualizer(t *testing.T) {
	model := &fakeGemini{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(modelOutput[:40]), genai.Text(modelOutput[40:])}},
		}},
	}}
	c := &GeminiConceptualizer{Model: model, Name: "gemini-pro"}

	concepts, err := c.Concepts(context.Background(), Brief{Product: "red shoe"})
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if len(concepts) != 2 {
		t.Errorf("concepts = %+v", concepts)
	}
	if text, ok := model.parts[0].(genai.Text); !ok || !strings.Contains(string(text), "3 distinct") {
		t.Errorf("prompt part = %v", model.parts[0])
	}

	c.Model = &fakeGemini{resp: &genai.GenerateContentResponse{}}
	if _, err := c.Concepts(context.Background(), Brief{Product: "red shoe"}); err == nil {
		t.Error("expected error for empty candidates")
	}
}

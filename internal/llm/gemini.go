package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// GeminiProvider serves chat completion requests through the Gemini API.
// Only the text of user and system messages is forwarded; system messages
// become the model's system instruction.
type GeminiProvider struct {
	APIKey string
	// Options are appended after the API key, e.g. option.WithHTTPClient.
	Options []option.ClientOption
}

// NewGemini returns a Gemini-backed Client.
func NewGemini(apiKey string, opts ...option.ClientOption) *GeminiProvider {
	return &GeminiProvider{APIKey: strings.TrimSpace(apiKey), Options: opts}
}

func (g *GeminiProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if g.APIKey == "" {
		return openai.ChatCompletionResponse{}, errors.New("gemini api key is empty")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(g.APIKey)}, g.Options...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(request.Model))
	if m == nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(request.Temperature),
	}
	if request.TopP > 0 {
		m.GenerationConfig.TopP = ptrFloat32(request.TopP)
	}
	if request.MaxTokens > 0 {
		n := int32(request.MaxTokens)
		m.GenerationConfig.MaxOutputTokens = &n
	}

	var parts []genai.Part
	var system []genai.Part
	for _, msg := range request.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == openai.ChatMessageRoleSystem {
			system = append(system, genai.Text(msg.Content))
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(parts) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("gemini: empty prompt")
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	txt := firstText(resp)
	if txt == "" {
		return openai.ChatCompletionResponse{}, errors.New("gemini: empty response")
	}
	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:   0,
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: txt},
		}},
	}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

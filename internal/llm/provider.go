package llm

import (
    "context"
    "net/http"

    openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface the classifier needs to call a chat model.
// It mirrors go-openai's CreateChatCompletion so any OpenAI-compatible or
// local backend can be adapted.
type Client interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is an optional capability that allows listing available models.
// Callers use a type assertion to detect availability.
type ModelLister interface {
    ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to the Client/ModelLister interfaces.
type OpenAIProvider struct {
    Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
    return p.Inner.ListModels(ctx)
}

// NewOpenAI builds a provider for an OpenAI-compatible endpoint such as
// OpenRouter. httpClient may be nil.
func NewOpenAI(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = baseURL
    }
    if httpClient != nil {
        cfg.HTTPClient = httpClient
    }
    return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

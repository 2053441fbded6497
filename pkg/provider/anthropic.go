package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider backs completions with the Anthropic Messages API.
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
}

// AnthropicConfig configures an AnthropicProvider.
type AnthropicConfig struct {
	// APIKey authenticates requests.
	APIKey string

	// DefaultModel is used when a request does not name a model.
	DefaultModel string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic provider: API key is required")
	}

	model := cfg.DefaultModel
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &AnthropicProvider{
		client:       anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		defaultModel: model,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// CreateCompletion implements Provider.
func (p *AnthropicProvider) CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	// The Messages API takes the system prompt out of band.
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, m := range request.Messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	if sb.Len() == 0 {
		return nil, fmt.Errorf("anthropic completion: empty response from model %s", model)
	}

	return &CompletionResponse{
		Content: sb.String(),
		Model:   string(resp.Model),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

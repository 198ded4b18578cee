package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dinadyno/persona-chat/core"
)

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. Required.
	APIKey string

	// Model is the Claude model serving both personas. Persona model names
	// are Ollama-local, so they are ignored by this provider.
	Model string

	// MaxTokens caps the response length. Defaults to 4096.
	MaxTokens int64
}

// Anthropic streams chat completions from the Anthropic API behind the same
// Provider contract as the Ollama client.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("anthropic api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Anthropic{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// StreamChat implements Provider. The persona's model argument is replaced
// by the configured Claude model.
func (a *Anthropic) StreamChat(ctx context.Context, model string, messages []core.Message, emit func(token string)) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  toMessageParams(messages),
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				full.WriteString(delta.Text)
				emit(delta.Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return full.String(), goerr.Wrap(ErrTransport, "anthropic stream failed",
			goerr.V("cause", err.Error()))
	}
	return full.String(), nil
}

func toMessageParams(messages []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}

var _ Provider = (*Anthropic)(nil)

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pariharkamal9829/interview-copilot/internal/config"
)

// Gateway forwards structured prompts to the completion API and parses
// the textual response as JSON. It holds no mutable state; every call is
// independent. There are no retries and no caching.
type Gateway struct {
	chatModel model.ChatModel
}

// NewGateway constructs the gateway from configuration.
func NewGateway(ctx context.Context, cfg config.AIConfig) (*Gateway, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return &Gateway{chatModel: chatModel}, nil
}

// NewGatewayWithModel wires an existing chat model, used by tests and the
// recordings probe.
func NewGatewayWithModel(chatModel model.ChatModel) *Gateway {
	return &Gateway{chatModel: chatModel}
}

// Complete builds the prompt for the request type, invokes the completion
// model with that type's sampling policy, and returns the response parsed
// as JSON. Transport failures come back wrapping ErrUpstreamUnavailable;
// non-JSON completions come back as *MalformedCompletionError carrying
// the raw text.
func (g *Gateway) Complete(ctx context.Context, requestType string, data json.RawMessage) (json.RawMessage, error) {
	p, err := buildPrompt(requestType, data)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	}

	response, err := g.chatModel.Generate(ctx, messages,
		model.WithTemperature(p.Policy.Temperature),
		model.WithMaxTokens(p.Policy.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	content := strings.TrimSpace(response.Content)
	if !json.Valid([]byte(content)) {
		return nil, &MalformedCompletionError{Raw: content}
	}

	log.Printf("[ai] completed request type=%s bytes=%d", requestType, len(content))
	return json.RawMessage(content), nil
}

// Package openaichat wraps the OpenAI chat completions API behind a small
// tool-calling surface. It knows nothing about the domains using it.
package openaichat

import (
	"context"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"insurance_intake_backend/platform/apperr"
)

// Roles used in conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model request to invoke a named tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one entry in a conversation. Tool results carry the ToolCallID
// of the call they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Tool describes a callable function offered to the model. Parameters is a
// JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Config holds the API connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// Client is a chat completion client for a fixed model.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// New builds a client. BaseURL may point at any OpenAI-compatible endpoint.
func New(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete sends the conversation and returns the assistant's next message,
// which may request tool calls instead of carrying content.
func (c *Client) Complete(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	const op = "openaichat.Complete"

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    toAPIMessages(messages),
	}
	if len(tools) > 0 {
		req.Tools = toAPITools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Message{}, apperr.Wrap(apperr.KindTimeout, "model call exceeded the turn deadline", err).WithOp(op)
		}
		return Message{}, apperr.Wrap(apperr.KindExternal, "model call failed", err).WithOp(op)
	}
	if len(resp.Choices) == 0 {
		return Message{}, apperr.External("model returned no choices").WithOp(op)
	}
	return fromAPIMessage(resp.Choices[0].Message), nil
}

func toAPIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		am := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			am.ToolCalls = append(am.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		out = append(out, am)
	}
	return out
}

func toAPITools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromAPIMessage(m openai.ChatCompletionMessage) Message {
	msg := Message{
		Role:    m.Role,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return msg
}

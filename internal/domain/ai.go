package domain

import (
	"context"
	"encoding/json"
)

// ChatMessage is one message in a chat-completions conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition describes a function the model may call. Parameters is a
// JSON schema.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// CompletionRequest is a provider-neutral chat-completions request.
// When ForceTool is set the model is required to call that tool.
type CompletionRequest struct {
	System      string
	Messages    []ChatMessage
	Tools       []ToolDefinition
	ForceTool   string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse holds the model's answer. ToolArguments is set when the
// model answered with a tool call.
type CompletionResponse struct {
	Content       string
	ToolName      string
	ToolArguments json.RawMessage
	Model         string
	InputTokens   int
	OutputTokens  int
}

// CompletionClient calls an AI completion provider.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Package llm contains the conversational layer: the model client and the
// agent loop that lets the model chain tool calls into a final answer. It
// is a collaborator of the dispatch core, never the other way around; the
// core exposes dispatch(name, arguments) and owns no model logic.
package llm

import (
	"context"

	"weather-agent/internal/api"
	"weather-agent/internal/tools"
)

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a conversation history. Tool messages carry
// the serialized ToolResult in Content and the originating tool in ToolName;
// assistant messages carry any tool calls the model requested alongside (or
// instead of) text.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []api.ToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

// GenerationResult is the complete output of one model call.
type GenerationResult struct {
	Content   string
	ToolCalls []api.ToolCall
	Usage     api.Usage
}

// Client is the interface the agent loop depends on. A single provider is
// configured today, but keeping the boundary narrow keeps the loop testable
// with a scripted fake.
type Client interface {
	Generate(ctx context.Context, messages []Message, available []tools.Tool) (*GenerationResult, error)
}

// Package api holds the wire types shared between the HTTP boundary, the
// agent loop, and the tool dispatch core. Keeping them in one place avoids
// import cycles between the layers that produce and consume them.
package api

import "encoding/json"

// ToolCall is a single tool invocation request issued by the caller (in
// practice, the model's function-call decision). Arguments are kept raw so
// the registry can validate them against the tool's own schema.
type ToolCall struct {
	Name      string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult is the terminal outcome of one dispatch: either normalized data
// or a structured error, never both and never neither.
type ToolResult struct {
	ToolName string     `json:"tool_name"`
	Data     any        `json:"data,omitempty"`
	Error    *ToolError `json:"error,omitempty"`
}

// Failed reports whether the dispatch ended in the Failed state.
func (r ToolResult) Failed() bool { return r.Error != nil }

// Usage holds token accounting for a generation request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another round of usage into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// ChatRequest is the inbound payload of the conversational endpoint.
// ConversationID is an opaque pass-through token; a fresh one is minted when
// the client omits it.
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the outbound payload of the conversational endpoint.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Usage          Usage  `json:"usage"`
	LatencyMS      int64  `json:"latency_ms"`
}

// Package llm implements a streaming client for OpenAI-compatible chat
// completion APIs, including incremental tool-call reconstruction.
package llm

import "encoding/json"

// ChatMessage represents a message in the OpenAI chat format.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a complete function call requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParsedArguments decodes the accumulated arguments string. A malformed
// payload yields an empty object rather than an error; by the time a tool is
// invoked the turn must not be aborted over provider formatting glitches.
func (tc ToolCall) ParsedArguments() map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// Tool represents a function declaration sent to the model.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction represents the function metadata.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is the request body for the chat completions endpoint.
type ChatRequest struct {
	Model           string        `json:"model"`
	Messages        []ChatMessage `json:"messages"`
	MaxTokens       int           `json:"max_tokens,omitempty"`
	Stream          bool          `json:"stream"`
	Tools           []Tool        `json:"tools,omitempty"`
	ToolChoice      string        `json:"tool_choice,omitempty"` // "required", "auto" or "none"
	ReasoningFormat string        `json:"reasoning_format,omitempty"`
}

// ToolCallFragment is one incremental piece of a tool call, delivered across
// streamed delta events and keyed by position index. The id arrives at most
// once; name and arguments accumulate by concatenation.
type ToolCallFragment struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// StreamEvent is one decoded event from a streaming completion response.
// Events after a transport or provider failure carry Err and end the stream.
type StreamEvent struct {
	Content      string
	Reasoning    string
	ToolCalls    []ToolCallFragment
	FinishReason string
	Err          error
}

package agent

import (
	"encoding/json"
	"fmt"
)

// Message is one event produced by an agent run. The concrete types mirror
// the CLI's stream-json output; tags we do not recognize come back as
// UnknownMessage so newer CLI versions never break consumers.
type Message interface {
	messageType() string
}

// ResultSuccess is the subtype of a clean run completion.
const ResultSuccess = "success"

// SystemMessage reports run lifecycle information such as the init banner.
type SystemMessage struct {
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ContentBlock is one block of an assistant turn.
type ContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// AssistantTurn is the inner body of an assistant event.
type AssistantTurn struct {
	Role    string         `json:"role"`
	Model   string         `json:"model,omitempty"`
	Content []ContentBlock `json:"content"`
}

// AssistantMessage carries a complete assistant turn, including any tool_use
// blocks.
type AssistantMessage struct {
	Message   AssistantTurn `json:"message"`
	SessionID string        `json:"session_id,omitempty"`
}

// StreamEvent wraps one raw partial-output event. The nested payload shape
// tracks the upstream API and is inspected by consumers, not modeled here.
type StreamEvent struct {
	Event     json.RawMessage `json:"event"`
	SessionID string          `json:"session_id,omitempty"`
}

// ToolProgressMessage reports elapsed time for a running tool.
type ToolProgressMessage struct {
	ToolName       string  `json:"tool_name"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	SessionID      string  `json:"session_id,omitempty"`
}

// Usage is the token accounting reported with a result.
type Usage struct {
	InputTokens              int `json:"input_tokens,omitempty"`
	OutputTokens             int `json:"output_tokens,omitempty"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}

// ResultMessage ends a run. Subtype is ResultSuccess for a clean completion;
// any other value describes how the run stopped.
type ResultMessage struct {
	Subtype    string `json:"subtype"`
	IsError    bool   `json:"is_error,omitempty"`
	Result     string `json:"result,omitempty"`
	NumTurns   int    `json:"num_turns,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Usage      *Usage `json:"usage,omitempty"`
}

// UnknownMessage preserves an event with an unrecognized type tag.
type UnknownMessage struct {
	Type string
	Raw  json.RawMessage
}

func (*SystemMessage) messageType() string       { return "system" }
func (*AssistantMessage) messageType() string    { return "assistant" }
func (*StreamEvent) messageType() string         { return "stream_event" }
func (*ToolProgressMessage) messageType() string { return "tool_progress" }
func (*ResultMessage) messageType() string       { return "result" }
func (*UnknownMessage) messageType() string      { return "unknown" }

// ParseMessage decodes one stream-json line into a typed Message. The input
// is not retained.
func ParseMessage(line []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, fmt.Errorf("parse agent message: %w", err)
	}

	switch head.Type {
	case "system":
		var m SystemMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parse system message: %w", err)
		}
		return &m, nil
	case "assistant":
		var m AssistantMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parse assistant message: %w", err)
		}
		return &m, nil
	case "stream_event":
		var m StreamEvent
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parse stream event: %w", err)
		}
		return &m, nil
	case "tool_progress":
		var m ToolProgressMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parse tool progress: %w", err)
		}
		return &m, nil
	case "result":
		var m ResultMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parse result message: %w", err)
		}
		return &m, nil
	default:
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		return &UnknownMessage{Type: head.Type, Raw: raw}, nil
	}
}

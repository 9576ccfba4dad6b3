package chat

import (
	"bytes"
	"encoding/json"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// InboundMessage is one conversation turn supplied by the browser, oldest
// first.
type InboundMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validation error kinds.
const (
	KindInvalidBody     = "invalid_body"
	KindMissingMessages = "missing_messages"
	KindNoUserMessage   = "no_user_message"
)

// ValidationError rejects a chat request before any upstream work happens.
// Message is safe to send to the client.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	errInvalidBody     = &ValidationError{Kind: KindInvalidBody, Message: "Invalid request body"}
	errMissingMessages = &ValidationError{Kind: KindMissingMessages, Message: "Messages array is required"}
	errNoUserMessage   = &ValidationError{Kind: KindNoUserMessage, Message: "No user message found"}
)

// ParseRequest decodes and validates a chat request body. On success the
// returned slice is non-empty and contains at least one user turn.
func ParseRequest(body []byte) ([]InboundMessage, *ValidationError) {
	var raw struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errInvalidBody
	}

	// The field must be array-typed; null, absent and scalar all reject the
	// same way.
	trimmed := bytes.TrimSpace(raw.Messages)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errMissingMessages
	}

	var messages []InboundMessage
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return nil, errInvalidBody
	}

	if LastUserMessage(messages) == nil {
		return nil, errNoUserMessage
	}
	return messages, nil
}

// LastUserMessage returns the most recent user turn, or nil when there is
// none.
func LastUserMessage(messages []InboundMessage) *InboundMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return &messages[i]
		}
	}
	return nil
}

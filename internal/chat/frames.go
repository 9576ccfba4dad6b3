package chat

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Frame types on the outbound wire.
const (
	FrameTextDelta    = "text_delta"
	FrameToolStart    = "tool_start"
	FrameToolProgress = "tool_progress"
	FrameDone         = "done"
	FrameError        = "error"
)

// Frame is one outbound wire event. Fields not used by a type stay empty.
type Frame struct {
	Type    string  `json:"type"`
	Text    string  `json:"text,omitempty"`
	Tool    string  `json:"tool,omitempty"`
	Elapsed float64 `json:"elapsed,omitempty"`
	Message string  `json:"message,omitempty"`
}

func (f Frame) encode() ([]byte, error) { return json.Marshal(f) }

// isTextDelta reports whether a raw stream_event payload is a text delta.
func isTextDelta(event []byte) bool {
	return gjson.GetBytes(event, "type").String() == "content_block_delta" &&
		gjson.GetBytes(event, "delta.type").String() == "text_delta"
}

// extractTextDelta pulls the text out of a text-delta payload. It errors
// when the payload carries no string text field.
func extractTextDelta(event []byte) (string, error) {
	text := gjson.GetBytes(event, "delta.text")
	if !text.Exists() || text.Type != gjson.String {
		return "", fmt.Errorf("text delta without string text")
	}
	return text.String(), nil
}

package agent

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseMessageVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "system init",
			line: `{"type":"system","subtype":"init","session_id":"s1","model":"m1"}`,
			want: "system",
		},
		{
			name: "assistant",
			line: `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]},"session_id":"s1"}`,
			want: "assistant",
		},
		{
			name: "stream event",
			line: `{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"a"}}}`,
			want: "stream_event",
		},
		{
			name: "tool progress",
			line: `{"type":"tool_progress","tool_name":"search","elapsed_seconds":1.5}`,
			want: "tool_progress",
		},
		{
			name: "result",
			line: `{"type":"result","subtype":"success","num_turns":2}`,
			want: "result",
		},
		{
			name: "unknown tag",
			line: `{"type":"rate_limit_notice","retry_after":30}`,
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.line))
			if err != nil {
				t.Fatalf("ParseMessage: %v", err)
			}
			if got := msg.messageType(); got != tt.want {
				t.Errorf("got type %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMessageMalformed(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestParseAssistantToolUse(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[` +
		`{"type":"text","text":"let me check"},` +
		`{"type":"tool_use","id":"toolu_01","name":"search","input":{"query":"weather vienna"}}` +
		`]},"session_id":"s1"}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	assistant, ok := msg.(*AssistantMessage)
	if !ok {
		t.Fatalf("got %T, want *AssistantMessage", msg)
	}
	if len(assistant.Message.Content) != 2 {
		t.Fatalf("got %d blocks, want 2", len(assistant.Message.Content))
	}
	tool := assistant.Message.Content[1]
	if tool.Type != "tool_use" || tool.Name != "search" || tool.ID != "toolu_01" {
		t.Errorf("tool block = %+v", tool)
	}
	if got := gjson.GetBytes(tool.Input, "query").String(); got != "weather vienna" {
		t.Errorf("got input query %q, want %q", got, "weather vienna")
	}
}

func TestParseStreamEventKeepsRawPayload(t *testing.T) {
	line := `{"type":"stream_event","event":{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hel"}},"session_id":"s1"}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	ev, ok := msg.(*StreamEvent)
	if !ok {
		t.Fatalf("got %T, want *StreamEvent", msg)
	}
	if got := gjson.GetBytes(ev.Event, "delta.text").String(); got != "hel" {
		t.Errorf("got delta text %q, want %q", got, "hel")
	}
	if got := gjson.GetBytes(ev.Event, "index").Int(); got != 0 {
		t.Errorf("got index %d, want 0", got)
	}
}

func TestParseResultWithUsage(t *testing.T) {
	line := `{"type":"result","subtype":"success","is_error":false,"result":"done","num_turns":3,"duration_ms":5120,"usage":{"input_tokens":812,"output_tokens":204}}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	result, ok := msg.(*ResultMessage)
	if !ok {
		t.Fatalf("got %T, want *ResultMessage", msg)
	}
	if result.Subtype != ResultSuccess {
		t.Errorf("got subtype %q, want %q", result.Subtype, ResultSuccess)
	}
	if result.NumTurns != 3 || result.DurationMS != 5120 {
		t.Errorf("result = %+v", result)
	}
	if result.Usage == nil || result.Usage.InputTokens != 812 || result.Usage.OutputTokens != 204 {
		t.Errorf("usage = %+v", result.Usage)
	}
}

func TestParseUnknownPreservesRaw(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":"tool result"}}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	unknown, ok := msg.(*UnknownMessage)
	if !ok {
		t.Fatalf("got %T, want *UnknownMessage", msg)
	}
	if unknown.Type != "user" {
		t.Errorf("got type %q, want %q", unknown.Type, "user")
	}
	if got := gjson.GetBytes(unknown.Raw, "message.role").String(); got != "user" {
		t.Errorf("got raw role %q, want %q", got, "user")
	}
}

package chat

import (
	"time"

	"github.com/google/uuid"

	"webdesk/internal/agent"
)

// RequestContext carries the identity and stream counters of one in-flight
// chat request. It is owned by a single relay invocation, mutated only there,
// and discarded when the response closes.
type RequestContext struct {
	ID        string
	StartedAt time.Time

	ChunkCount      int
	TextDeltaCount  int
	ToolsUsedCount  int
	ParseErrorCount int

	// Usage is the token accounting from the final result, when reported.
	Usage *agent.Usage
}

// NewRequestContext mints the context for one request. An empty id gets a
// fresh uuid.
func NewRequestContext(id string) *RequestContext {
	if id == "" {
		id = uuid.New().String()
	}
	return &RequestContext{ID: id, StartedAt: time.Now()}
}

func (rc *RequestContext) counters() map[string]any {
	return map[string]any{
		"chunk_count":       rc.ChunkCount,
		"text_delta_count":  rc.TextDeltaCount,
		"tools_used_count":  rc.ToolsUsedCount,
		"parse_error_count": rc.ParseErrorCount,
	}
}

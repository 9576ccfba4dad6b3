package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"webdesk/internal/agent"
	"webdesk/internal/telemetry"
)

// Breadcrumb categories for the relay lifecycle. Stable names so dashboards
// and tests can key on them.
const (
	CrumbValidationFailed = "chat.validation_failed"
	CrumbToolStarted      = "chat.tool_started"
	CrumbToolProgress     = "chat.tool_progress"
	CrumbStreamError      = "chat.stream_error"
	CrumbStreamSummary    = "chat.stream_summary"
)

// clientStreamError is the only error text a frame ever carries. Detail stays
// in telemetry.
const clientStreamError = "Stream error occurred"

// defaultMaxTurns bounds an agent run when no turn budget is configured.
const defaultMaxTurns = 10

// Querier opens an upstream agent run.
type Querier interface {
	Query(ctx context.Context, prompt string, opts agent.Options) (agent.Stream, error)
}

// StreamWriter delivers encoded frames to the client in order. WriteFrame
// blocks until the transport accepts the payload; that is the backpressure
// boundary. WriteDone terminates the stream.
type StreamWriter interface {
	WriteFrame(payload []byte) error
	WriteDone() error
}

// Config holds the fixed upstream run settings of a Service.
type Config struct {
	MaxTurns   int
	Model      string
	ToolPreset string
	WorkDir    string
}

// Service validates chat requests, assembles prompts and relays agent event
// streams to the client.
type Service struct {
	querier   Querier
	collector telemetry.Collector
	cfg       Config
}

// NewService creates a chat service backed by the given agent querier.
func NewService(querier Querier, collector telemetry.Collector, cfg Config) *Service {
	if collector == nil {
		collector = telemetry.Noop{}
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	return &Service{querier: querier, collector: collector, cfg: cfg}
}

// ValidateRequest parses and validates a request body. A rejection records a
// warning breadcrumb; success records nothing.
func (s *Service) ValidateRequest(rc *RequestContext, body []byte) ([]InboundMessage, *ValidationError) {
	messages, verr := ParseRequest(body)
	if verr != nil {
		s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
			Category: CrumbValidationFailed,
			Message:  verr.Message,
			Level:    telemetry.LevelWarning,
			Data:     map[string]any{"request_id": rc.ID, "kind": verr.Kind},
		})
		return nil, verr
	}
	return messages, nil
}

// Open assembles the prompt and starts the upstream run. The run is bounded
// by the configured turn budget, gets the full tool preset without permission
// prompts, streams partial output and is confined to the configured working
// directory.
func (s *Service) Open(ctx context.Context, rc *RequestContext, messages []InboundMessage) (agent.Stream, error) {
	stream, err := s.querier.Query(ctx, BuildPrompt(messages), agent.Options{
		MaxTurns:        s.cfg.MaxTurns,
		Model:           s.cfg.Model,
		ToolPreset:      s.cfg.ToolPreset,
		SkipPermissions: true,
		PartialMessages: true,
		WorkDir:         s.cfg.WorkDir,
	})
	if err != nil {
		s.collector.RecordException(err, map[string]string{
			"request_id": rc.ID,
			"location":   "chat.open",
		}, nil)
		return nil, fmt.Errorf("open agent stream: %w", err)
	}
	return stream, nil
}

// Relay pulls the upstream run to completion and writes the outbound frame
// sequence. Every code path ends the stream with the termination sentinel;
// errors never escape past here.
func (s *Service) Relay(ctx context.Context, rc *RequestContext, stream agent.Stream, w StreamWriter) {
	defer stream.Close()

	for {
		msg, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.finish(rc, w)
			return
		}
		if err != nil {
			s.fail(rc, w, fmt.Errorf("pull agent event: %w", err))
			return
		}

		rc.ChunkCount++
		if err := s.dispatch(rc, msg, w); err != nil {
			s.fail(rc, w, err)
			return
		}
	}
}

// dispatch classifies one upstream message. A returned error means the
// outbound transport failed; per-event problems are contained here.
func (s *Service) dispatch(rc *RequestContext, msg agent.Message, w StreamWriter) error {
	switch m := msg.(type) {
	case *agent.StreamEvent:
		if !isTextDelta(m.Event) {
			return nil
		}
		rc.TextDeltaCount++
		text, err := extractTextDelta(m.Event)
		if err != nil {
			// One bad delta never aborts the stream.
			rc.ParseErrorCount++
			s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
				Category: CrumbStreamError,
				Message:  "text delta dropped",
				Level:    telemetry.LevelWarning,
				Data:     map[string]any{"request_id": rc.ID, "error": err.Error()},
			})
			return nil
		}
		payload, err := Frame{Type: FrameTextDelta, Text: text}.encode()
		if err != nil {
			return nil
		}
		return w.WriteFrame(payload)

	case *agent.AssistantMessage:
		for _, block := range m.Message.Content {
			if block.Type != "tool_use" {
				continue
			}
			rc.ToolsUsedCount++
			s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
				Category: CrumbToolStarted,
				Message:  block.Name,
				Level:    telemetry.LevelInfo,
				Data:     map[string]any{"request_id": rc.ID, "tool": block.Name, "tool_id": block.ID},
			})
			payload, err := Frame{Type: FrameToolStart, Tool: block.Name}.encode()
			if err != nil {
				continue
			}
			if err := w.WriteFrame(payload); err != nil {
				return err
			}
		}
		return nil

	case *agent.ToolProgressMessage:
		s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
			Category: CrumbToolProgress,
			Message:  m.ToolName,
			Level:    telemetry.LevelInfo,
			Data:     map[string]any{"request_id": rc.ID, "tool": m.ToolName, "elapsed": m.ElapsedSeconds},
		})
		payload, err := Frame{Type: FrameToolProgress, Tool: m.ToolName, Elapsed: m.ElapsedSeconds}.encode()
		if err != nil {
			return nil
		}
		return w.WriteFrame(payload)

	case *agent.ResultMessage:
		if m.Usage != nil {
			rc.Usage = m.Usage
		}
		if m.Subtype == agent.ResultSuccess {
			// Not the end of iteration: the upstream may still emit trailing
			// bookkeeping events before exhausting.
			payload, err := Frame{Type: FrameDone}.encode()
			if err != nil {
				return nil
			}
			return w.WriteFrame(payload)
		}
		s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
			Category: CrumbStreamError,
			Message:  "agent run ended without success",
			Level:    telemetry.LevelError,
			Data:     map[string]any{"request_id": rc.ID, "subtype": m.Subtype},
		})
		payload, err := Frame{Type: FrameError, Message: clientStreamError}.encode()
		if err != nil {
			return nil
		}
		return w.WriteFrame(payload)

	default:
		// Unrecognized upstream events are dropped on purpose.
		return nil
	}
}

// finish ends a stream that exhausted naturally: sentinel first, then the
// summary breadcrumb with final counters.
func (s *Service) finish(rc *RequestContext, w StreamWriter) {
	w.WriteDone()

	data := rc.counters()
	data["request_id"] = rc.ID
	data["duration_ms"] = time.Since(rc.StartedAt).Milliseconds()
	if rc.Usage != nil {
		data["input_tokens"] = rc.Usage.InputTokens
		data["output_tokens"] = rc.Usage.OutputTokens
	}
	s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
		Category: CrumbStreamSummary,
		Message:  "stream finished",
		Level:    telemetry.LevelInfo,
		Data:     data,
	})
}

// fail ends a stream after an unrecoverable error: telemetry with internal
// detail, one generic error frame, then the sentinel. Frame writes are best
// effort since the connection may already be gone.
func (s *Service) fail(rc *RequestContext, w StreamWriter, err error) {
	data := rc.counters()
	data["request_id"] = rc.ID
	data["error"] = err.Error()
	s.collector.RecordBreadcrumb(telemetry.Breadcrumb{
		Category: CrumbStreamError,
		Message:  "stream aborted",
		Level:    telemetry.LevelError,
		Data:     data,
	})
	s.collector.RecordException(err, map[string]string{
		"request_id": rc.ID,
		"location":   "chat.relay",
	}, map[string]any{"stream": rc.counters()})

	if payload, encErr := (Frame{Type: FrameError, Message: clientStreamError}).encode(); encErr == nil {
		w.WriteFrame(payload)
	}
	w.WriteDone()
}

package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
func (r errReader) Close() error             { return nil }

func ndjson(lines ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func collect(t *testing.T, s Stream) ([]Message, error) {
	t.Helper()
	var msgs []Message
	for {
		msg, err := s.Next(context.Background())
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
}

func TestProcessStreamIteration(t *testing.T) {
	stream := newProcessStream(ndjson(
		`{"type":"system","subtype":"init","session_id":"s1"}`,
		``,
		`not json at all`,
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}}`,
		`{"type":"result","subtype":"success"}`,
	), nil, nil)
	defer stream.Close()

	msgs, err := collect(t, stream)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got err %v, want io.EOF", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if _, ok := msgs[0].(*SystemMessage); !ok {
		t.Errorf("msgs[0] = %T, want *SystemMessage", msgs[0])
	}
	if _, ok := msgs[1].(*StreamEvent); !ok {
		t.Errorf("msgs[1] = %T, want *StreamEvent", msgs[1])
	}
	if _, ok := msgs[2].(*ResultMessage); !ok {
		t.Errorf("msgs[2] = %T, want *ResultMessage", msgs[2])
	}
}

func TestProcessStreamLongLine(t *testing.T) {
	big := strings.Repeat("x", 128*1024)
	stream := newProcessStream(ndjson(
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"`+big+`"}}}`,
	), nil, nil)
	defer stream.Close()

	msg, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := msg.(*StreamEvent); !ok {
		t.Fatalf("got %T, want *StreamEvent", msg)
	}
	if _, err := stream.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("got err %v, want io.EOF", err)
	}
}

func TestProcessStreamExitError(t *testing.T) {
	exitErr := errors.New("agent exited: exit status 1")
	stream := newProcessStream(ndjson(
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"a"}}}`,
	), nil, func() error { return exitErr })
	defer stream.Close()

	if _, err := stream.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := stream.Next(context.Background()); !errors.Is(err, exitErr) {
		t.Fatalf("got err %v, want %v", err, exitErr)
	}
}

func TestProcessStreamReadError(t *testing.T) {
	stream := newProcessStream(errReader{err: io.ErrUnexpectedEOF}, nil, nil)
	defer stream.Close()

	_, err := stream.Next(context.Background())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got err %v, want wrapped %v", err, io.ErrUnexpectedEOF)
	}
}

func TestProcessStreamContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := newProcessStream(ndjson(`{"type":"result","subtype":"success"}`), nil, nil)
	defer stream.Close()

	if _, err := stream.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got err %v, want %v", err, context.Canceled)
	}
}

func TestProcessStreamCloseReapsOnce(t *testing.T) {
	var finished, killed int
	stream := newProcessStream(ndjson(`{"type":"result","subtype":"success"}`), func() { killed++ }, func() error {
		finished++
		return nil
	})

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if finished != 1 {
		t.Errorf("finish ran %d times, want 1", finished)
	}
	if killed == 0 {
		t.Error("kill never ran")
	}
}

func TestQueryUnavailableBinary(t *testing.T) {
	client := NewClient("/nonexistent/webdesk-agent-binary")

	_, err := client.Query(context.Background(), "hello", Options{})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}

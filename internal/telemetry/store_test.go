package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func TestOpenStoreRequiresPath(t *testing.T) {
	if _, err := OpenStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	store.RecordBreadcrumb(Breadcrumb{
		Category: "chat.stream_summary",
		Message:  "stream finished",
		Level:    LevelInfo,
		Data:     map[string]any{"chunk_count": 4},
	})
	store.RecordException(
		errors.New("agent exited"),
		map[string]string{"request_id": "r1"},
		map[string]any{"stream": map[string]any{"chunk_count": 2}},
	)

	events, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	// Newest first.
	if events[0].Kind != kindException {
		t.Errorf("got kind %q, want %q", events[0].Kind, kindException)
	}
	if events[0].Message != "agent exited" {
		t.Errorf("got message %q, want %q", events[0].Message, "agent exited")
	}
	var tags map[string]string
	if err := json.Unmarshal(events[0].Tags, &tags); err != nil {
		t.Fatalf("unmarshal tags: %v", err)
	}
	if tags["request_id"] != "r1" {
		t.Errorf("got request_id %q, want %q", tags["request_id"], "r1")
	}

	crumb := events[1]
	if crumb.Kind != kindBreadcrumb {
		t.Errorf("got kind %q, want %q", crumb.Kind, kindBreadcrumb)
	}
	if crumb.Category != "chat.stream_summary" {
		t.Errorf("got category %q, want %q", crumb.Category, "chat.stream_summary")
	}
	var data map[string]any
	if err := json.Unmarshal(crumb.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["chunk_count"] != float64(4) {
		t.Errorf("got chunk_count %v, want 4", data["chunk_count"])
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.RecordBreadcrumb(Breadcrumb{Category: "chat.tool_progress", Message: fmt.Sprintf("tick %d", i)})
	}

	events, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
	if events[0].Message != "tick 4" {
		t.Errorf("got newest %q, want %q", events[0].Message, "tick 4")
	}
}

func TestMarshalColumn(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty map", map[string]any{}, nil},
		{"nil typed map", map[string]string(nil), nil},
		{"values", map[string]string{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshalColumn(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

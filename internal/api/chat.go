package api

import (
	"io"
	"net/http"

	"webdesk/internal/chat"
)

// maxChatBodyBytes bounds the chat request body.
const maxChatBodyBytes = 1 << 20

// handleChatStream validates a chat request, starts an agent run and relays
// its events to the client as a server-sent event stream.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	rc := chat.NewRequestContext(RequestIDFromContext(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	messages, verr := s.chat.ValidateRequest(rc, body)
	if verr != nil {
		writeBadRequest(w, verr.Message)
		return
	}

	sse, ok := newSSEWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	stream, err := s.chat.Open(r.Context(), rc, messages)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	s.chat.Relay(r.Context(), rc, stream, sse)
}

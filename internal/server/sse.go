package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names emitted by the analysis stream.
const (
	EventStatus   = "status"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(code, message string) {
	s.WriteEvent(EventError, errorBody{Error: code, Message: message}) //nolint:errcheck
}

// WriteComplete sends a completion event carrying the final phase
func (s *SSEWriter) WriteComplete(phase string) {
	s.WriteEvent(EventComplete, map[string]string{"state": phase}) //nolint:errcheck
}

// Package sse provides Server-Sent Events support for snapshot streams.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventSnapshot carries the current state of a watched document or query.
	EventSnapshot EventType = "snapshot"
	// EventError is an error event.
	EventError EventType = "error"
	// EventDone is a stream completion event.
	EventDone EventType = "done"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed.
var ErrStreamingUnsupported = errors.New("streaming not supported")

// Writer writes Server-Sent Events to an HTTP response. It is safe for use
// from several goroutines and numbers events from 1.
type Writer struct {
	mu      sync.Mutex
	writer  http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// NewWriter sets the SSE headers and returns a writer.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &Writer{
		writer:  w,
		flusher: flusher,
	}, nil
}

// WriteEvent writes an SSE event with the next sequence id.
func (w *Writer) WriteEvent(eventType EventType, data string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	_, err := fmt.Fprintf(w.writer, "id: %s\nevent: %s\ndata: %s\n\n", strconv.Itoa(w.seq), eventType, data)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteJSON writes an SSE event with JSON-encoded data.
func (w *Writer) WriteJSON(eventType EventType, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return w.WriteEvent(eventType, string(jsonData))
}

// WriteSnapshot writes a snapshot event.
func (w *Writer) WriteSnapshot(data any) error {
	return w.WriteJSON(EventSnapshot, data)
}

// ErrorEvent represents an error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an error event.
func (w *Writer) WriteError(code, message, details string) error {
	return w.WriteJSON(EventError, &ErrorEvent{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteDone writes a done event to signal stream completion.
func (w *Writer) WriteDone() error {
	return w.WriteEvent(EventDone, "stream completed")
}

// Heartbeat writes an SSE comment line that keeps idle connections open.
func (w *Writer) Heartbeat() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprint(w.writer, ": ping\n\n"); err != nil {
		return fmt.Errorf("failed to write heartbeat: %w", err)
	}
	w.flusher.Flush()
	return nil
}

package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/control"
)

// StateFunc returns the current axis state for GET /state. It is
// called from HTTP handler goroutines and must be safe to call while
// the polling loop runs (control.Loop.Status is).
type StateFunc func() control.Status

// Handlers holds dependencies for HTTP handlers. The web surface is
// read-only: the buttons are the only control input of the stage.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	State       StateFunc
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If state is nil, GET /state returns 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, state StateFunc, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		State:       state,
		staticFS:    staticFS,
	}
}

// HandleState returns the current axis state as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	if h.State == nil {
		http.Error(w, "state not available", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.State())
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

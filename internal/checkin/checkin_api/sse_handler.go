package checkin_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/sse"
)

// SSEHandler streams live check-in events to the admin dashboard.
type SSEHandler struct {
	EventEmitter *sse.CheckinEventEmitter
	Logger       *logger.Logger
}

func NewSSEHandler(emitter *sse.CheckinEventEmitter, log *logger.Logger) *SSEHandler {
	return &SSEHandler{EventEmitter: emitter, Logger: log}
}

// HandleCheckinStream subscribes the caller to the live check-in feed and
// keeps the connection open until the client disconnects.
func (h *SSEHandler) HandleCheckinStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	events := h.EventEmitter.Subscribe(ctx)
	h.Logger.Debug("SSE", fmt.Sprintf("Client connected to check-in feed (%d active)", h.EventEmitter.GetClientCount()))

	// Initial comment so proxies flush the response headers right away
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case evt, open := <-events:
			if !open {
				h.Logger.Debug("SSE", "Check-in feed channel closed")
				return
			}
			jsonData, err := json.Marshal(evt)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize check-in event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: checkin\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected from check-in feed")
			return
		}
	}
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

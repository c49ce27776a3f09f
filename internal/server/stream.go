package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"orderflow/internal/models"
)

// SSE event names pushed over /api/stream
const (
	eventOrder = "order"
	eventDlq   = "dlq"
	eventStats = "stats"
)

type streamEvent struct {
	name string
	data any
}

// A StreamHub fans aggregator updates out to SSE subscribers. It implements
// interfaces.StatsNotifier; pushes never block the aggregator: a subscriber
// that falls behind its channel buffer loses events.
type StreamHub struct {
	mu          sync.Mutex
	subscribers map[chan streamEvent]struct{}
	logger      *zerolog.Logger
}

// NewStreamHub creates an empty hub
func NewStreamHub(logger *zerolog.Logger) *StreamHub {
	return &StreamHub{
		subscribers: make(map[chan streamEvent]struct{}),
		logger:      logger,
	}
}

// OrderProcessed pushes a processed order view to all subscribers
func (h *StreamHub) OrderProcessed(view models.OrderView) {
	h.broadcast(streamEvent{name: eventOrder, data: view})
}

// OrderDeadLettered pushes a dead-lettered order view to all subscribers
func (h *StreamHub) OrderDeadLettered(view models.OrderView) {
	h.broadcast(streamEvent{name: eventDlq, data: view})
}

// StatsUpdated pushes an aggregate snapshot to all subscribers
func (h *StreamHub) StatsUpdated(stats models.Stats) {
	h.broadcast(streamEvent{name: eventStats, data: stats})
}

func (h *StreamHub) broadcast(event streamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *StreamHub) subscribe() chan streamEvent {
	ch := make(chan streamEvent, 64)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

func (h *StreamHub) unsubscribe(ch chan streamEvent) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}

// SubscriberCount returns how many streams are currently attached
func (h *StreamHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers)
}

// handleStream handles GET /api/stream requests: a server-sent-events
// stream of order, dlq and stats events, open until the client disconnects
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	s.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Stream subscriber attached")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Stream subscriber detached")
			return
		case event := <-ch:
			data, err := json.Marshal(event.data)
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to encode stream event")
				continue
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.name, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

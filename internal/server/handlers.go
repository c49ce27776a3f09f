package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/archive"
	"orderflow/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status            string `json:"status"`
	Time              string `json:"time"`
	StreamSubscribers int    `json:"stream_subscribers"`
}

// handleCreateOrder handles POST /api/orders requests: synthesize an order,
// publish it to the primary topic and return it with status SENT without
// waiting for the broker acknowledgment
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.source.ProduceOrder(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create order")
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to create order", "")
		return
	}

	s.logger.Info().Str("order_id", order.OrderID).Msg("Created order via API")

	s.writeJSONResponse(w, http.StatusOK, order.View(models.StatusSent, time.Now().UnixMilli()))
}

// handleRecentOrders handles GET /api/orders/recent requests
func (s *Server) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.stats.RecentOrders())
}

// handleDlqMessages handles GET /api/orders/dlq requests
func (s *Server) handleDlqMessages(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.stats.DlqMessages())
}

// handleStats handles GET /api/stats requests
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.stats.Stats())
}

// handleGetOrder handles GET /api/orders/{order_id} requests against the
// archive
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "Order archive is not configured", "")
		return
	}

	orderID := strings.TrimSpace(r.PathValue("order_id"))
	if orderID == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Order ID is required", "")
		return
	}

	order, err := s.archive.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Order not found", orderID)
			return
		}

		s.logger.Error().
			Err(err).
			Str("order_id", orderID).
			Str("remote_addr", r.RemoteAddr).
			Msg("Failed to get order")

		s.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, order)
}

// handleHealth handles GET /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:            "ok",
		Time:              time.Now().UTC().Format(time.RFC3339),
		StreamSubscribers: s.hub.SubscriberCount(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
	}
}

// writeErrorResponse writes an error response in JSON format
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	errorResp := ErrorResponse{
		Error:   message,
		Message: details,
	}

	s.writeJSONResponse(w, statusCode, errorResp)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/config"
	"orderflow/internal/models"
)

// A mockStatsSource serves fixed aggregator snapshots for testing
type mockStatsSource struct {
	stats  models.Stats
	recent []models.OrderView
	dlq    []models.OrderView
}

func (m *mockStatsSource) Stats() models.Stats              { return m.stats }
func (m *mockStatsSource) RecentOrders() []models.OrderView { return m.recent }
func (m *mockStatsSource) DlqMessages() []models.OrderView  { return m.dlq }

// A mockOrderSource returns a fixed order
type mockOrderSource struct {
	order *models.Order
	err   error
}

func (m *mockOrderSource) ProduceOrder(ctx context.Context) (*models.Order, error) {
	return m.order, m.err
}

func newTestServer(stats *mockStatsSource, source *mockOrderSource) *Server {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	cfg := &config.Config{Server: config.ServerConfig{Port: 8080}}
	hub := NewStreamHub(&logger)

	return New(cfg, stats, source, nil, hub, &logger)
}

func TestServer_Stats(t *testing.T) {
	stats := &mockStatsSource{
		stats: models.Stats{TotalOrders: 3, RunningAverage: 150.0, RetryCount: 2, DlqCount: 1},
	}
	srv := newTestServer(stats, &mockOrderSource{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("error: status = %d, want 200", rec.Code)
	}

	var got models.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error: %v", err)
	}
	if got != stats.stats {
		t.Errorf("error: stats = %+v, want %+v", got, stats.stats)
	}
}

func TestServer_RecentOrders(t *testing.T) {
	stats := &mockStatsSource{
		recent: []models.OrderView{
			{OrderID: "a", Product: "Laptop", Price: 100, Status: models.StatusProcessed},
			{OrderID: "b", Product: "Mouse", Price: 20, Status: models.StatusProcessed},
		},
	}
	srv := newTestServer(stats, &mockOrderSource{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/recent", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("error: status = %d, want 200", rec.Code)
	}

	var got []models.OrderView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(got) != 2 || got[0].OrderID != "a" || got[1].OrderID != "b" {
		t.Errorf("error: unexpected recent orders: %+v", got)
	}
}

func TestServer_DlqMessages(t *testing.T) {
	stats := &mockStatsSource{
		dlq: []models.OrderView{
			{OrderID: "dead", Product: "Camera", Price: 300, Status: models.DlqStatus("boom")},
		},
	}
	srv := newTestServer(stats, &mockOrderSource{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/dlq", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("error: status = %d, want 200", rec.Code)
	}

	var got []models.OrderView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(got) != 1 || got[0].Status != "DLQ: boom" {
		t.Errorf("error: unexpected dlq messages: %+v", got)
	}
}

func TestServer_CreateOrder(t *testing.T) {
	source := &mockOrderSource{order: &models.Order{OrderID: "new-1", Product: "Tablet", Price: 199.99}}
	srv := newTestServer(&mockStatsSource{}, source)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("error: status = %d, want 200", rec.Code)
	}

	var got models.OrderView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error: %v", err)
	}
	if got.OrderID != "new-1" || got.Status != models.StatusSent {
		t.Errorf("error: unexpected view: %+v", got)
	}
}

func TestServer_GetOrderWithoutArchive(t *testing.T) {
	srv := newTestServer(&mockStatsSource{}, &mockOrderSource{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/some-id", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("error: status = %d, want 503", rec.Code)
	}
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(&mockStatsSource{}, &mockOrderSource{})

	ch := srv.hub.subscribe()
	defer srv.hub.unsubscribe(ch)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("error: status = %d, want 200", rec.Code)
	}

	var got HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("error: health status = %q, want ok", got.Status)
	}
	if got.StreamSubscribers != 1 {
		t.Errorf("error: stream subscribers = %d, want 1", got.StreamSubscribers)
	}
}

func TestStreamHub_Broadcast(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	hub := NewStreamHub(&logger)

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	hub.OrderProcessed(models.OrderView{OrderID: "s-1", Status: models.StatusProcessed})
	hub.StatsUpdated(models.Stats{TotalOrders: 1})

	first := <-ch
	if first.name != eventOrder {
		t.Errorf("error: first event = %s, want %s", first.name, eventOrder)
	}
	second := <-ch
	if second.name != eventStats {
		t.Errorf("error: second event = %s, want %s", second.name, eventStats)
	}
}

func TestStreamHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	hub := NewStreamHub(&logger)

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the subscriber buffer; the hub must keep going
		for i := 0; i < 1000; i++ {
			hub.StatsUpdated(models.Stats{TotalOrders: int64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("error: broadcast blocked on a slow subscriber")
	}
}

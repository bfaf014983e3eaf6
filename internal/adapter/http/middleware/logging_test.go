package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success", status: http.StatusCreated, wantLevel: "info"},
		{name: "rejected payment", status: http.StatusUnprocessableEntity, wantLevel: "warn"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := NewLoggingMiddleware(zerolog.New(&buf))

			h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/simulations", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel || entry["path"] != "/api/v1/simulations" {
				t.Fatalf("unexpected log entry: %v", entry)
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Fatalf("expected status %d, got %v", tt.status, entry["status"])
			}
		})
	}
}

func TestLoggingMiddleware_RecordsCallerHeaders(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/loan-1/payments", nil)
	req.Header.Set(ActorIDHeader, "cashier-7")
	req.Header.Set(IdempotencyKeyHeader, "pay-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	if entry["actor_id"] != "cashier-7" || entry["idempotency_key"] != "pay-1" {
		t.Fatalf("expected caller headers in log entry, got %v", entry)
	}
	if entry["level"] != "info" || int(entry["status"].(float64)) != http.StatusOK || int(entry["bytes"].(float64)) != 11 {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/goloan/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the idempotency store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
)

// cachedResponse is what the store keeps for a completed request.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays successful responses to repeated mutating
// requests that carry the same Idempotency-Key.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, ttl: usecase.IdempotencyKeyTTL}
}

// WithTTL overrides how long stored responses are replayable. Non-positive
// values keep the default.
func (m *IdempotencyMiddleware) WithTTL(ttl time.Duration) *IdempotencyMiddleware {
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
//
// Only 2xx responses are stored. A key whose first request failed, or is
// still in flight, stays claimed and later requests reach the handler,
// where payments are deduplicated again under the loan lock.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		scoped := r.Method + " " + r.URL.Path + ":" + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), scoped, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotency check failed")
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists && len(cached) > 0 && string(cached) != usecase.IdempotencyInFlight {
			replay(w, cached)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			return
		}

		data, err := json.Marshal(cachedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
		if err != nil {
			return
		}
		if err := m.store.Update(r.Context(), scoped, data, m.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	})
}

func replay(w http.ResponseWriter, data []byte) {
	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil || cached.Status == 0 {
		cached = cachedResponse{Status: http.StatusOK, Body: data}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(cached.Status)
	w.Write(cached.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iho/goloan/internal/adapter/http/dto"
)

// Recovery turns a panic in a handler into a 500 with the API error body.
// http.ErrAbortHandler is re-raised so the server aborts the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("panic recovered")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
				Error:   "internal server error",
				Message: "unexpected failure while handling the request",
			})
		}()

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/goloan/internal/domain"
)

// ActorIDHeader names the operator issuing a request. It is recorded in the
// audit trail, not authenticated.
const ActorIDHeader = "X-Actor-ID"

// RequestMeta stores the caller's identity on the request context for audit logs.
// It must run after chi's RequestID and RealIP middleware.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := domain.WithRequestMeta(r.Context(), domain.RequestMeta{
			ActorID:   r.Header.Get(ActorIDHeader),
			IPAddress: getIP(r),
			UserAgent: r.UserAgent(),
			RequestID: chimiddleware.GetReqID(r.Context()),
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

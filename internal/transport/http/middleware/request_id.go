package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"garmenthr/internal/domain/audit"
	"garmenthr/internal/platform/logger"
	"garmenthr/internal/requestctx"
	"garmenthr/internal/transport/http/shared"
)

// RequestID assigns the request id, records the client address for audit rows
// and attaches a request-scoped zerolog logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = audit.WithClientIP(ctx, shared.ClientIP(r))
		ctx = logger.WithRequest(ctx, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

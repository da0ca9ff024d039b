// Package middleware holds adapters and in house middlewares
package middleware

import (
	stdhttp "net/http"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	pnet "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net"

	"github.com/google/uuid"
)

// RequestID assigns every request a uuid (honoring an inbound X-Request-ID),
// mirrors it on the response and threads it through context and logger
func RequestID(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ctx := pnet.WithRequest(r.Context(), reqID)
		ctx = logger.WithRequest(ctx, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

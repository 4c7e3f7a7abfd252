// Package requestid assigns a correlation ID to every request.
// Inbound X-Request-ID headers are trusted if well-formed so IDs survive
// proxy hops; otherwise a fresh UUID is minted.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware stores the request ID in the context and echoes it back
// in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerName, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

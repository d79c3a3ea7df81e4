package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/logger"
)

// RequestIDMiddleware assigns every request a UUID for log correlation and
// echoes it back in the X-Request-ID header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs one line per request. It must run after the auth
// middleware so the resolved user ID lands in the log context.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := r.Context()
		if identity := auth.IdentityFromContext(ctx); identity.Authenticated {
			ctx = context.WithValue(ctx, logger.UserIDKey, identity.UserID)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)

		logger.WithContext(r.Context()).Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// CORSMiddleware adds permissive CORS headers for browser clients.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth wraps a handler that needs an authenticated caller. The
// identity has already been resolved by auth.Middleware; this only enforces
// it where anonymous access is not allowed.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.IdentityFromContext(r.Context()).Authenticated {
			respondError(w, r, srverrors.NewUnauthenticated("authentication required"))
			return
		}
		next(w, r)
	}
}

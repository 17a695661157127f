package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	CorrelationIDHeader = "Correlation-Id"

	correlationIDKey contextKey = "correlation_id"
	bearerTokenKey   contextKey = "bearer_token"
	loggerKey        contextKey = "logger"
)

// correlationID tags the request with the caller's Correlation-Id or a fresh
// one, and scopes a logger carrying it into the context.
func correlationID(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(CorrelationIDHeader, id)

			ctx := context.WithValue(r.Context(), correlationIDKey, id)
			ctx = context.WithValue(ctx, loggerKey, base.With(zap.String("correlation_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken exposes an Authorization: Bearer token to operations whose
// payload carries no user_token.
func bearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			r = r.WithContext(context.WithValue(r.Context(), bearerTokenKey, strings.TrimSpace(token)))
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger(r.Context()).Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

func tokenOr(ctx context.Context, token string) string {
	if token != "" {
		return token
	}
	bearer, _ := ctx.Value(bearerTokenKey).(string)
	return bearer
}

func logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

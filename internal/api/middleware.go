package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/samber/oops"
	slogctx "github.com/veqryn/slog-context"
)

// CorrelationHeader carries the request correlation id.
const CorrelationHeader = "X-Correlation-Id"

type correlationKey struct{}

// CorrelationIDFromContext returns the id assigned by RequestContext.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// RequestContext assigns a correlation id (reusing the inbound header when
// present) and attaches request attributes to the logging context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get(CorrelationHeader)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(CorrelationHeader, corrID)

		ctx := context.WithValue(r.Context(), correlationKey{}, corrID)
		ctx = slogctx.With(ctx,
			slog.String("correlationId", corrID),
			slog.Group("requestData",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLog logs one record per request and counts it by route pattern.
func AccessLog(logger *slog.Logger, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if metrics != nil {
				metrics.observeRequest(route, status)
			}
			logger.DebugContext(r.Context(), "request served",
				slog.String("route", route),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recoverer turns a handler panic into a 500 response and keeps serving.
func Recoverer(logger *slog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			err := oops.In("http").
				With("path", r.URL.Path).
				Recover(func() {
					next.ServeHTTP(ww, r)
				})
			if err == nil {
				return
			}

			logger.ErrorContext(r.Context(), "internal error", slogctx.Err(err))
			if ww.Status() != 0 {
				// headers already sent; nothing left to report
				return
			}
			writeJSON(w, http.StatusInternalServerError, internalErrorBody{
				Error:     msgInternal,
				Timestamp: now().UTC().Format(time.RFC3339Nano),
			})
		})
	}
}

// clientIP derives a best-effort caller address.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

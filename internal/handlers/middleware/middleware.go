// internal/handlers/middleware/middleware.go
package middleware

import (
	"compress/gzip"
	"context"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ammerola/storefront-be/internal/pkg/logger"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
)

// RequestID middleware adds a unique request ID to each request
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if request already has an ID (from proxy/LB)
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), logger.ContextKeyRequestID, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger logs the start and end of every request. Request values placed in
// the context by earlier middleware are attached by the logger's handler.
func Logger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			clientIP := getClientIP(r)

			ctx := r.Context()
			ctx = context.WithValue(ctx, logger.ContextKeyClientIP, clientIP)
			ctx = context.WithValue(ctx, logger.ContextKeyUserAgent, r.UserAgent())
			ctx = context.WithValue(ctx, logger.ContextKeyMethod, r.Method)
			ctx = context.WithValue(ctx, logger.ContextKeyPath, r.URL.Path)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			l.DebugContext(ctx, "request_started",
				slog.Group("request",
					slog.String("query", r.URL.RawQuery),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("referer", r.Referer()),
					slog.Int64("content_length", r.ContentLength),
				),
			)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)

			logLevel := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				logLevel = slog.LevelWarn
			} else if duration > 5*time.Second && !wrapped.streaming {
				logLevel = slog.LevelWarn
			}

			l.Log(ctx, logLevel, "request_completed",
				slog.Group("response",
					slog.Int("status", wrapped.statusCode),
					slog.Int("bytes", wrapped.bytesWritten),
					slog.Duration("duration", duration),
					slog.Bool("streamed", wrapped.streaming),
				),
			)
		})
	}
}

// Recovery middleware recovers from panics
func Recovery(slogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					requestID, _ := r.Context().Value(logger.ContextKeyRequestID).(string)

					slogger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"Internal Server Error","request_id":"` + requestID + `"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit allows requests per duration for each client IP, with bursts up
// to the same count
func RateLimit(requests int, duration time.Duration) func(http.Handler) http.Handler {
	limiters := &sync.Map{}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute).UnixNano()
			limiters.Range(func(key, value interface{}) bool {
				if value.(*rateLimiter).lastSeen.Load() < cutoff {
					limiters.Delete(key)
				}
				return true
			})
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			val, ok := limiters.Load(ip)
			if !ok {
				val, _ = limiters.LoadOrStore(ip, &rateLimiter{
					limiter: rate.NewLimiter(rate.Every(duration/time.Duration(requests)), requests),
				})
			}
			rl := val.(*rateLimiter)
			rl.lastSeen.Store(time.Now().UnixNano())

			if !rl.limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS middleware handles Cross-Origin Resource Sharing
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				// credentials are needed for the session cookie, so the
				// origin is echoed rather than sent as "*"
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS, PATCH")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-ID, "+SessionHeader)
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, "+SessionHeader)
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders middleware adds security headers
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// Timeout bounds how long a handler may run. Not for streaming routes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"error":"Request timeout"}`)
	}
}

// Compression gzips responses for clients that accept it
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := &gzipResponseWriter{ResponseWriter: w}
		defer gz.Close()

		gz.Header().Set("Content-Encoding", "gzip")
		gz.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gz, r)
	})
}

// Metrics records request latency under the given route pattern
func Metrics(m *metrics.Metrics, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}

// Chain applies middlewares so the first one listed runs first
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Helper types and functions

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	written      bool
	streaming    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Flush implements http.Flusher so event streams work through the wrapper
func (rw *responseWriter) Flush() {
	rw.streaming = true
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}

	return r.RemoteAddr
}

// gzipResponseWriter implements gzip compression
type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.writer == nil {
		w.writer = gzip.NewWriter(w.ResponseWriter)
	}
	return w.writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Close() {
	if w.writer != nil {
		w.writer.Close()
	}
}

// Flush implements http.Flusher
func (w *gzipResponseWriter) Flush() {
	if w.writer != nil {
		w.writer.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

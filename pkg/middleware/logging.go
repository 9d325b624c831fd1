package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

const slowRequestThreshold = 500 * time.Millisecond

type accessFieldsKey struct{}

// accessFields collects what inner layers learn about a request (the
// authenticated user, the report view touched) for its access log line.
type accessFields struct {
	mu     sync.Mutex
	fields log.Fields
}

// AddAccessLogFields attaches fields to the access log line of the request
// carried by ctx. Outside LoggingMiddleware it does nothing.
func AddAccessLogFields(ctx context.Context, fields log.Fields) {
	acc, ok := ctx.Value(accessFieldsKey{}).(*accessFields)
	if !ok {
		return
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	for k, v := range fields {
		acc.fields[k] = v
	}
}

func (a *accessFields) merge(into log.Fields) log.Fields {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range a.fields {
		into[k] = v
	}
	return into
}

// LoggingMiddleware logs the start and end of every request with a
// correlation id and the fields added through AddAccessLogFields.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, correlationID := log.WithCorrelationID(r.Context())
			acc := &accessFields{fields: log.Fields{}}
			ctx = context.WithValue(ctx, accessFieldsKey{}, acc)
			r = r.WithContext(ctx)

			isDev := log.IsDevelopment()
			started := time.Now()

			startFields := log.Fields{
				"correlation_id": correlationID,
				"method":         r.Method,
				"path":           r.URL.Path,
			}
			if !isDev {
				startFields["remote_addr"] = r.RemoteAddr
				startFields["query"] = r.URL.RawQuery
				startFields["user_agent"] = r.UserAgent()
				startFields["content_length"] = r.ContentLength
			}
			log.L.WithFields(startFields).Debug("request started")

			lrw := newLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)

			elapsed := time.Since(started)
			logger := log.L.WithFields(acc.merge(log.Fields{
				"correlation_id": correlationID,
				"method":         r.Method,
				"path":           r.URL.Path,
				"status_code":    lrw.statusCode,
				"duration_ms":    elapsed.Milliseconds(),
				"response_bytes": lrw.written,
			}))

			message := "request finished"
			if isDev {
				message = fmt.Sprintf("%s %s %d in %s", r.Method, r.URL.Path, lrw.statusCode, formatDuration(elapsed))
			}

			switch {
			case lrw.statusCode >= http.StatusInternalServerError:
				logger.Error(message)
			case lrw.statusCode >= http.StatusBadRequest:
				logger.Warn(message)
			default:
				logger.Info(message)
			}

			if elapsed > slowRequestThreshold {
				logger.Warnf("slow request: %s", formatDuration(elapsed))
			}
		})
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d µs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}

// loggingResponseWriter records the status code and body size written by the handler.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.written += n
	return n, err
}

// LogPanicMiddleware turns panics into 500 responses and logs the stack.
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]

				logger := log.L.WithFields(log.Fields{
					"correlation_id": log.GetCorrelationID(r.Context()),
					"error":          recovered,
					"method":         r.Method,
					"path":           r.URL.Path,
				})

				if log.IsDevelopment() {
					logger.Error("panic recovered")
					fmt.Fprintf(os.Stderr, "\n=== STACK TRACE ===\n%s\n", stack)
				} else {
					logger.WithField("stack_trace", string(stack)).Error("unhandled panic")
				}

				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Internal server error", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

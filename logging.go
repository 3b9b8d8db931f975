package api

import (
	"log/slog"
	"net/http"
	"time"
)

// exchangeRecorder wraps the response writer of one request. It captures
// what the access log and the metrics report: the status, the number of
// bytes written and, when the gateway refused the exchange, the rejection.
type exchangeRecorder struct {
	http.ResponseWriter
	status   int
	size     int
	rejected *ValidationError
}

func newExchangeRecorder(w http.ResponseWriter) *exchangeRecorder {
	return &exchangeRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (e *exchangeRecorder) WriteHeader(code int) {
	e.status = code
	e.ResponseWriter.WriteHeader(code)
}

func (e *exchangeRecorder) Write(b []byte) (int, error) {
	n, err := e.ResponseWriter.Write(b)
	e.size += n
	return n, err
}

// Unwrap supports http.ResponseController.
func (e *exchangeRecorder) Unwrap() http.ResponseWriter {
	return e.ResponseWriter
}

// noteRejection marks every recorder in w's wrapper chain with verr.
func noteRejection(w http.ResponseWriter, verr *ValidationError) {
	for w != nil {
		if rec, ok := w.(*exchangeRecorder); ok {
			rec.rejected = verr
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return
		}
		w = u.Unwrap()
	}
}

// Logger returns middleware that writes one access log entry per request.
// 5xx responses are logged at error and 4xx at warn, except gateway
// rejections of client input, which are routine and stay at info.
// Responses that broke their own schema are logged at warn.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newExchangeRecorder(w)
			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("size", rec.size),
				slog.String("remote", r.RemoteAddr),
			}

			// The mux sets r.Pattern on this same request value.
			if r.Pattern != "" {
				attrs = append(attrs, slog.String("pattern", r.Pattern))
			}
			if id := GetRequestID(r); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if rec.rejected != nil {
				attrs = append(attrs,
					slog.String("rejected", string(rec.rejected.Source)),
					slog.Int("issues", len(rec.rejected.Details)),
				)
			}

			logger.LogAttrs(r.Context(), accessLevel(rec), "request", attrs...)
		})
	}
}

func accessLevel(rec *exchangeRecorder) slog.Level {
	switch {
	case rec.rejected != nil && rec.rejected.Source == SourceResponse:
		return slog.LevelWarn
	case rec.rejected != nil:
		return slog.LevelInfo
	case rec.status >= http.StatusInternalServerError:
		return slog.LevelError
	case rec.status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

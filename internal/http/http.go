package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/services/daterange"
	"findash/internal/services/telemetry"
)

// UserHeader carries the caller's user ID
const UserHeader = "X-User-ID"

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// StatusFor maps an engine error to an HTTP status. Input errors are the
// caller's fault; anything else is ours.
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.InvalidRange, models.InvalidDeltaMode, models.InvalidUser:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse sends err as JSON. Server errors are logged and their detail
// is withheld from the body.
func ErrorResponse(w http.ResponseWriter, logger *logging.Logger, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: string(models.KindOf(err)), Message: err.Error()}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		if body.Error == "" {
			body.Error = "Internal"
		}
		var e *models.Error
		if errors.As(err, &e) {
			body.Message = e.Msg
		} else {
			body.Message = http.StatusText(status)
		}
	}
	WriteJSON(w, status, body)
}

// RangeRequest reads preset, start and end from the query string
func RangeRequest(r *http.Request) daterange.Request {
	q := r.URL.Query()
	return daterange.Request{
		Preset: q.Get("preset"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}
}

// RequestLogger logs each request with zap and reports it to the collector
// under its route pattern
func RequestLogger(logger *logging.Logger, metrics telemetry.Collector) func(http.Handler) http.Handler {
	log := logger.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			metrics.RecordRequest(route, status, elapsed)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", elapsed),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}

package dashboard

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "findash/internal/http"
	"findash/internal/logging"
	"findash/internal/services/dashboard"
)

// UsageRecorder persists that a user viewed their dashboard
type UsageRecorder interface {
	RecordDashboardView(ctx context.Context, userID, rangeKey string) error
}

var (
	service *dashboard.Service
	usage   UsageRecorder
	logger  *logging.Logger
)

// Initialize sets up the dashboard package with required dependencies. A nil
// recorder disables usage recording.
func Initialize(s *dashboard.Service, u UsageRecorder, l *logging.Logger) {
	service = s
	usage = u
	if l == nil {
		l = logging.NewNop()
	}
	logger = l.Named("handlers")
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard", handleDashboard)
	r.Get("/api/tax", handleTax)
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(apphttp.UserHeader)
	mode := r.URL.Query().Get("mode")

	payload, err := service.ComputeDashboard(r.Context(), userID, apphttp.RangeRequest(r), mode)
	if err != nil {
		apphttp.ErrorResponse(w, logger, err)
		return
	}

	if usage != nil {
		// the service has already accepted the id
		id, _ := dashboard.ParseUserID(userID)
		rangeKey := payload.Range.Start + "/" + payload.Range.End
		if err := usage.RecordDashboardView(r.Context(), id, rangeKey); err != nil {
			logger.Warn("failed to record dashboard view", zap.String("user", userID), zap.Error(err))
		}
	}

	apphttp.WriteJSON(w, http.StatusOK, payload)
}

func handleTax(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(apphttp.UserHeader)

	report, err := service.EstimateTax(r.Context(), userID, apphttp.RangeRequest(r))
	if err != nil {
		apphttp.ErrorResponse(w, logger, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, report)
}

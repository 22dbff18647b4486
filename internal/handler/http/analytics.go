package http

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/repository"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AnalyticsHandler serves aggregate reports over the click log.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	log        *zap.Logger
}

func NewAnalyticsHandler(aggregator *analytics.Aggregator, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
		log:        log,
	}
}

// GetAnalytics handles GET /api/analytics/{code}. Expired links still
// report; only unknown codes yield 404.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/api/analytics/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, "Short code is required", http.StatusBadRequest)
		return
	}

	report, err := h.aggregator.Aggregate(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(w, "Short URL not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to aggregate analytics", zap.String("code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Debug("analytics served",
		zap.String("code", code),
		zap.Int64("total_clicks", report.TotalClicks),
	)
	writeJSON(w, http.StatusOK, report)
}

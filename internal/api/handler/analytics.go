package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/garagelink/internal/analytics"
	"github.com/kiranshivaraju/garagelink/internal/api/response"
)

// Analytics serves the customer analytics endpoint.
type Analytics struct {
	svc JobService
	now func() time.Time
}

// NewAnalytics creates the analytics handler.
func NewAnalytics(svc JobService, now func() time.Time) *Analytics {
	if now == nil {
		now = time.Now
	}
	return &Analytics{svc: svc, now: now}
}

// Summary handles GET /api/v1/customers/{customerID}/analytics.
func (h *Analytics) Summary(w http.ResponseWriter, r *http.Request) {
	period, ok := analytics.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"period must be one of week, month, year, all", nil)
		return
	}

	list, err := h.svc.ByCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, analytics.Summarize(list, period, h.now()))
}

package http

import (
	"net/http"
	"time"

	"github.com/kaju0475/samduk/internal/application"
)

func (h *Handler) queryHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := application.HistoryQueryInput{Action: q.Get("action")}
	if ids, ok := q["cylinderId"]; ok {
		in.CylinderIDs = ids
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "from must be RFC3339")
			return
		}
		in.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "to must be RFC3339")
			return
		}
		in.To = ts
	}

	events, err := h.service.QueryHistory(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, "query_history", err)
		return
	}
	writeSuccess(w, http.StatusOK, events)
}

func (h *Handler) longTermReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.LongTermReport(r.Context())
	if err != nil {
		writeDomainError(w, r, "long_term_report", err)
		return
	}
	writeSuccess(w, http.StatusOK, report)
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		writeDomainError(w, r, "dashboard_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

package http

import (
	"net/http"

	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/contracts"
	"github.com/kaju0475/samduk/internal/domain"
)

// Each work endpoint accepts only the actions of its domain; submitting a
// delivery action to the charging endpoint is a request-level error, not a
// per-item one.
var workEndpointActions = map[string]map[domain.Action]struct{}{
	"charging": {
		domain.ActionStart:    {},
		domain.ActionComplete: {},
	},
	"delivery": {
		domain.ActionDelivery:   {},
		domain.ActionCollection: {},
	},
	"inspection": {
		domain.ActionInspectionSend:   {},
		domain.ActionInspectionReturn: {},
	},
	"disposal": {
		domain.ActionDispose: {},
	},
}

func (h *Handler) workCharging(w http.ResponseWriter, r *http.Request) {
	h.handleWork(w, r, "charging")
}

func (h *Handler) workDelivery(w http.ResponseWriter, r *http.Request) {
	h.handleWork(w, r, "delivery")
}

func (h *Handler) workInspection(w http.ResponseWriter, r *http.Request) {
	h.handleWork(w, r, "inspection")
}

func (h *Handler) workDisposal(w http.ResponseWriter, r *http.Request) {
	h.handleWork(w, r, "disposal")
}

// handleWork decodes a batch work request, checks the action belongs to the
// endpoint, and returns 200 with the per-item breakdown even when some items
// failed. Only request-level problems produce a non-200 status.
func (h *Handler) handleWork(w http.ResponseWriter, r *http.Request, endpoint string) {
	var req contracts.WorkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	if req.Action == "" && endpoint == "disposal" {
		req.Action = string(domain.ActionDispose)
	}
	if _, ok := workEndpointActions[endpoint][domain.Action(req.Action)]; !ok {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "action not supported by this endpoint")
		return
	}

	result, err := h.service.ProcessWork(r.Context(), actorFromContext(r.Context()), application.WorkInput{
		Action:      req.Action,
		CylinderIDs: req.CylinderIDs,
		CustomerID:  req.CustomerID,
	})
	if err != nil {
		writeDomainError(w, r, "work_"+endpoint, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

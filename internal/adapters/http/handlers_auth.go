package http

import (
	"net/http"

	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/contracts"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req contracts.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	result, err := h.service.Login(r.Context(), application.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, r, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), actorFromContext(r.Context())); err != nil {
		writeDomainError(w, r, "logout", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (h *Handler) qrToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.IssueQRToken(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, "qr_token", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) qrCheck(w http.ResponseWriter, r *http.Request) {
	var req contracts.QRCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	result, err := h.service.QRLogin(r.Context(), req.QRCode)
	if err != nil {
		writeDomainError(w, r, "qr_check", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

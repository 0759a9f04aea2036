package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/contracts"
	"github.com/kaju0475/samduk/internal/ports"
)

func (h *Handler) createCylinder(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateCylinderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	cylinder, err := h.service.CreateCylinder(r.Context(), actorFromContext(r.Context()), application.CreateCylinderInput{
		SerialNumber:  req.SerialNumber,
		GasType:       req.GasType,
		ContainerType: req.ContainerType,
		Capacity:      req.Capacity,
		Location:      req.Location,
		Status:        req.Status,
		Memo:          req.Memo,
	})
	if err != nil {
		writeDomainError(w, r, "create_cylinder", err)
		return
	}
	writeSuccess(w, http.StatusCreated, cylinder)
}

func (h *Handler) updateCylinder(w http.ResponseWriter, r *http.Request) {
	var req contracts.UpdateCylinderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	cylinder, err := h.service.UpdateCylinder(r.Context(), actorFromContext(r.Context()), application.UpdateCylinderInput{
		ID: req.ID,
		Patch: ports.CylinderPatch{
			SerialNumber:  req.SerialNumber,
			GasType:       req.GasType,
			ContainerType: req.ContainerType,
			Capacity:      req.Capacity,
			Location:      req.Location,
			Memo:          req.Memo,
		},
	})
	if err != nil {
		writeDomainError(w, r, "update_cylinder", err)
		return
	}
	writeSuccess(w, http.StatusOK, cylinder)
}

func (h *Handler) deleteCylinder(w http.ResponseWriter, r *http.Request) {
	cylinder, err := h.service.DeleteCylinder(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "delete_cylinder", err)
		return
	}
	writeSuccess(w, http.StatusOK, cylinder)
}

func (h *Handler) listCylinders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cylinders, err := h.service.ListCylinders(r.Context(), application.ListCylindersInput{
		Status:         q.Get("status"),
		GasType:        q.Get("gasType"),
		Serial:         q.Get("serial"),
		CustomerID:     q.Get("customerId"),
		IncludeDeleted: q.Get("includeDeleted") == "true",
	})
	if err != nil {
		writeDomainError(w, r, "list_cylinders", err)
		return
	}
	writeSuccess(w, http.StatusOK, cylinders)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed json body")
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), application.CreateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeDomainError(w, r, "create_customer", err)
		return
	}
	writeSuccess(w, http.StatusCreated, customer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		writeDomainError(w, r, "list_customers", err)
		return
	}
	writeSuccess(w, http.StatusOK, customers)
}

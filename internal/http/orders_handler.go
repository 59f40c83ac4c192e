package http

import (
	"net/http"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrdersHandler struct {
	orders OrderAPI
	log    logrus.FieldLogger
}

func NewOrdersHandler(orders OrderAPI, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{orders: orders, log: log}
}

// GetOrder shows an order to the session that placed it. Other sessions get
// a 404 so order ids cannot be probed.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	details, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	if details.SessionID != sessionID(r.Context()) {
		respondError(w, r, h.log, http.StatusNotFound, "not_found", domain.ErrOrderNotFound.Error())
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, details)
}

func (h *OrdersHandler) loadOrder(w http.ResponseWriter, r *http.Request) (*domain.OrderDetails, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, http.StatusNotFound, "not_found", domain.ErrOrderNotFound.Error())
		return nil, false
	}

	details, err := h.orders.OrderDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return nil, false
	}
	return details, true
}

package http

import (
	"net/http"
	"strings"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/service"
	"github.com/sirupsen/logrus"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkout CheckoutAPI
	maxBody  int64
	log      logrus.FieldLogger
}

func NewCheckoutHandler(checkout CheckoutAPI, maxBody int64, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, maxBody: maxBody, log: log}
}

type CheckoutRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > 255 {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key is too long")
		return
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		SessionID:      sessionID(r.Context()),
		IdempotencyKey: key,
		Customer: domain.Customer{
			Name:    strings.TrimSpace(req.Name),
			Email:   strings.TrimSpace(req.Email),
			Address: strings.TrimSpace(req.Address),
			City:    strings.TrimSpace(req.City),
			Zip:     strings.TrimSpace(req.Zip),
		},
	})
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/api/v1/orders/"+result.Order.ID.String())
	respondJSON(w, r, h.log, status, result.Order)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	carts   CartAPI
	maxBody int64
	log     logrus.FieldLogger
}

func NewCartHandler(carts CartAPI, maxBody int64, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{carts: carts, maxBody: maxBody, log: log}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.carts.Add(r.Context(), sessionID(r.Context()), req.ProductID, req.Quantity); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	h.respondCart(w, r, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err := h.carts.UpdateQuantity(r.Context(), sessionID(r.Context()), chi.URLParam(r, "product_id"), req.Quantity)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// ItemAction handles the increase and decrease buttons.
func (h *CartHandler) ItemAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "product_id")

	var err error
	switch chi.URLParam(r, "action") {
	case "increase":
		err = h.carts.Increase(ctx, sessionID(ctx), productID)
	case "decrease":
		err = h.carts.Decrease(ctx, sessionID(ctx), productID)
	default:
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_action", "action must be increase or decrease")
		return
	}
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Remove(r.Context(), sessionID(r.Context()), chi.URLParam(r, "product_id")); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), sessionID(r.Context())); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.carts.List(r.Context(), sessionID(r.Context()))
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, status, view)
}

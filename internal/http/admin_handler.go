package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentOrders = 10

type AdminHandler struct {
	catalog CatalogAPI
	orders  OrderAPI
	perPage int
	maxBody int64
	log     logrus.FieldLogger
}

func NewAdminHandler(catalog CatalogAPI, orders OrderAPI, perPage int, maxBody int64, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{catalog: catalog, orders: orders, perPage: perPage, maxBody: maxBody, log: log}
}

type DashboardResponse struct {
	Revenue       float64                `json:"revenue"`
	TotalOrders   int64                  `json:"total_orders"`
	TotalProducts int64                  `json:"total_products"`
	RecentOrders  []*domain.Order        `json:"recent_orders"`
	CategoryStats []domain.CategoryCount `json:"category_stats"`
}

type UpdateProductRequestDTO struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var resp DashboardResponse
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() (err error) {
		resp.Revenue, err = h.orders.Revenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.TotalOrders, err = h.orders.CountOrders(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.RecentOrders, err = h.orders.RecentOrders(ctx, dashboardRecentOrders)
		return err
	})
	g.Go(func() (err error) {
		resp.TotalProducts, err = h.catalog.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.CategoryStats, err = h.catalog.CategoryBreakdown(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, resp)
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page, err := h.catalog.AdminCatalog(r.Context(), values.Get("q"), queryInt(values.Get("page"), 1, domain.MaxPage), h.perPage)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, page)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.NewProduct
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// value may arrive as a JSON number or a string
	value := strings.Trim(strings.TrimSpace(string(req.Value)), `"`)
	p, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.Field, value)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, http.StatusNotFound, "not_found", domain.ErrOrderNotFound.Error())
		return
	}

	details, err := h.orders.OrderDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, details)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, http.StatusNotFound, "not_found", domain.ErrOrderNotFound.Error())
		return
	}

	var req UpdateStatusRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, h.log, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, order)
}

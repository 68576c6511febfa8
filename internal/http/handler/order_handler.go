package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	search := r.URL.Query().Get("search")
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	result, err := h.orderService.List(r.Context(), page, pageSize, search, status)
	if err != nil {
		h.logger.Error("Failed to list service orders", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list service orders")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Service order not found")
			return
		}
		h.logger.Error("Failed to get service order", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get service order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			respondWithError(w, http.StatusBadRequest, "Referenced client does not exist")
		default:
			h.logger.Error("Failed to create service order", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create service order")
		}
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req domain.UpdateServiceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Service order not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to update service order", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update service order")
		}
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus moves the order through its workflow states
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=aberta em_andamento concluida cancelada"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Service order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Service order not found")
			return
		}
		h.logger.Error("Failed to delete service order", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete service order")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RetryImage re-runs receipt generation after a failed attempt
func (h *OrderHandler) RetryImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	if err := h.orderService.RetryImage(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Service order not found")
			return
		}
		h.logger.Error("Order image retry failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Image generation failed")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

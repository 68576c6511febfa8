package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LayoutHandler struct {
	layoutService *service.LayoutService
	logger        *zap.Logger
}

func NewLayoutHandler(layoutService *service.LayoutService, logger *zap.Logger) *LayoutHandler {
	return &LayoutHandler{
		layoutService: layoutService,
		logger:        logger,
	}
}

func (h *LayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	layouts, err := h.layoutService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list layouts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list layouts")
		return
	}

	respondJSON(w, http.StatusOK, layouts)
}

func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layout id")
		return
	}

	layout, err := h.layoutService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Layout not found")
			return
		}
		h.logger.Error("Failed to get layout", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get layout")
		return
	}

	respondJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	layout, err := h.layoutService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create layout", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create layout")
		return
	}

	respondJSON(w, http.StatusCreated, layout)
}

func (h *LayoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layout id")
		return
	}

	var req domain.UpdateLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	layout, err := h.layoutService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Layout not found")
			return
		}
		h.logger.Error("Failed to update layout", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update layout")
		return
	}

	respondJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layout id")
		return
	}

	if err := h.layoutService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Layout not found")
			return
		}
		h.logger.Error("Failed to delete layout", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete layout")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Dispatch forwards a batch of rows to the layout's webhook
func (h *LayoutHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layout id")
		return
	}

	var req domain.DispatchLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.layoutService.Dispatch(r.Context(), id, &req); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Layout not found")
			return
		}
		h.logger.Error("Layout dispatch failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Webhook dispatch failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

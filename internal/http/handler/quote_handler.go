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

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	search := r.URL.Query().Get("search")
	status := domain.QuoteStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	result, err := h.quoteService.List(r.Context(), page, pageSize, search, status)
	if err != nil {
		h.logger.Error("Failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("Failed to get quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			respondWithError(w, http.StatusBadRequest, "Referenced client does not exist")
		default:
			h.logger.Error("Failed to create quote", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create quote")
		}
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quote not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to update quote", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update quote")
		}
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// UpdateStatus approves, rejects or expires a quote
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=pendente aprovado recusado expirado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.quoteService.UpdateStatus(r.Context(), id, domain.QuoteStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("Failed to update quote status", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update quote status")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("Failed to delete quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete quote")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *QuoteHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	var req domain.AddQuotePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	photo, err := h.quoteService.AddPhoto(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("Failed to add quote photo", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to add quote photo")
		return
	}

	respondJSON(w, http.StatusCreated, photo)
}

func (h *QuoteHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}
	photoID, err := uuid.Parse(chi.URLParam(r, "photoId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid photo id")
		return
	}

	if err := h.quoteService.DeletePhoto(r.Context(), quoteID, photoID); err != nil {
		h.logger.Error("Failed to delete quote photo", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete quote photo")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RetryImage re-runs receipt generation after a failed attempt
func (h *QuoteHandler) RetryImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	if err := h.quoteService.RetryImage(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("Quote image retry failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Image generation failed")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

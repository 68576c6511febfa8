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

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	search := r.URL.Query().Get("search")

	result, err := h.clientService.List(r.Context(), page, pageSize, search)
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client id")
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("Failed to get client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	respondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client id")
		return
	}

	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("Failed to update client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client id")
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("Failed to delete client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

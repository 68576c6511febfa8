package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/mapper"
	"go.uber.org/zap"
)

type AuthHandler struct {
	bootstrap *auth.Bootstrap
	logger    *zap.Logger
}

func NewAuthHandler(bootstrap *auth.Bootstrap, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		bootstrap: bootstrap,
		logger:    logger,
	}
}

// Login signs the user in and returns the access token with the resolved
// profile. A stale profile id is repaired transparently.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.bootstrap.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, auth.ErrProfileNotConfigured):
			respondWithError(w, http.StatusForbidden, "User profile not configured")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, domain.LoginResponse{
		AccessToken: result.Session.AccessToken,
		TokenType:   result.Session.TokenType,
		ExpiresIn:   result.Session.ExpiresIn,
		Profile:     mapper.ToProfileDTO(result.Profile),
	})
}

// Verify resolves the profile for an already authenticated identity,
// repairing a stale id. Exposed for session refresh flows.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	profile, err := h.bootstrap.Verify(r.Context(), req.Email, req.IdentityID)
	if err != nil {
		respondWithError(w, http.StatusForbidden, "User profile not configured")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProfileDTO(profile))
}

// Me returns the profile bound to the request's session
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.MustFromContext(r.Context())
	respondJSON(w, http.StatusOK, domain.ProfileDTO{
		ID:    session.ProfileID,
		Email: session.Email,
		Name:  session.Name,
		Role:  session.Role,
	})
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetworks/internal/usecase"
)

// AuthHandler handles inspector token issuance
type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/token", h.IssueToken).Methods("POST")
}

type issueTokenRequest struct {
	Badge      string `json:"badge"`
	AccessCode string `json:"access_code"`
}

// IssueToken exchanges a badge and access code for a bearer token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authUseCase.IssueToken(r.Context(), req.Badge, req.AccessCode)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Token issued", result)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetworks/internal/usecase"
)

// SourceHandler handles HTTP requests for regulatory sources
type SourceHandler struct {
	sourceUseCase *usecase.SourceUseCase
	auth          *AuthMiddleware
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sourceUseCase *usecase.SourceUseCase, auth *AuthMiddleware) *SourceHandler {
	return &SourceHandler{sourceUseCase: sourceUseCase, auth: auth}
}

// RegisterRoutes registers source routes
func (h *SourceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/sources", h.auth.RequireAuth(h.CreateSource)).Methods("POST")
	router.HandleFunc("/api/v1/sources", h.ListSources).Methods("GET")
	router.HandleFunc("/api/v1/sources/{id}", h.GetSource).Methods("GET")
}

// CreateSource handles regulatory source registration
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	source, err := h.sourceUseCase.CreateSource(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Source created", source)
}

// ListSources handles listing all regulatory sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sourceUseCase.ListSources(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Sources retrieved", sources)
}

// GetSource handles retrieving a single regulatory source
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.sourceUseCase.GetSource(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Source retrieved", source)
}

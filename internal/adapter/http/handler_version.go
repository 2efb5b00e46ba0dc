package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetworks/internal/usecase"
)

// VersionHandler handles HTTP requests for rule versions
type VersionHandler struct {
	versionUseCase *usecase.VersionUseCase
	auth           *AuthMiddleware
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versionUseCase *usecase.VersionUseCase, auth *AuthMiddleware) *VersionHandler {
	return &VersionHandler{versionUseCase: versionUseCase, auth: auth}
}

// RegisterRoutes registers version routes
func (h *VersionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/versions", h.auth.RequireAuth(h.CreateVersion)).Methods("POST")
	router.HandleFunc("/api/v1/versions", h.ListVersions).Methods("GET")
	router.HandleFunc("/api/v1/versions/{id}", h.GetVersion).Methods("GET")
	router.HandleFunc("/api/v1/versions/{id}/rules", h.auth.RequireAuth(h.AddRule)).Methods("POST")
	router.HandleFunc("/api/v1/versions/{id}/rules", h.ListRules).Methods("GET")
	router.HandleFunc("/api/v1/versions/{id}/activate", h.auth.RequireAuth(h.ActivateVersion)).Methods("POST")
	router.HandleFunc("/api/v1/versions/{id}/retire", h.auth.RequireAuth(h.RetireVersion)).Methods("POST")
	router.HandleFunc("/api/v1/versions/{id}/enabled", h.auth.RequireAuth(h.SetEnabled)).Methods("PUT")
}

type createVersionRequest struct {
	Name           string    `json:"name"`
	SourceIDs      []string  `json:"source_ids"`
	EffectiveStart time.Time `json:"effective_start"`
}

// CreateVersion handles draft version creation
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	version, err := h.versionUseCase.CreateVersion(r.Context(), req.Name, req.SourceIDs, req.EffectiveStart, ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Version created", version)
}

// ListVersions handles listing all versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.versionUseCase.ListVersions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Versions retrieved", versions)
}

// GetVersion handles retrieving a single version
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.versionUseCase.GetVersion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Version retrieved", version)
}

// AddRule handles adding a rule to a draft version
func (h *VersionHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	var req usecase.AddRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	req.VersionID = mux.Vars(r)["id"]

	rule, err := h.versionUseCase.AddRule(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Rule added", rule)
}

// ListRules handles listing a version's rules
func (h *VersionHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.versionUseCase.ListRules(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rules retrieved", rules)
}

// ActivateVersion handles promoting a draft to ACTIVE
func (h *VersionHandler) ActivateVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.versionUseCase.ActivateVersion(r.Context(), mux.Vars(r)["id"], ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Version activated", version)
}

// RetireVersion handles retiring an ACTIVE version
func (h *VersionHandler) RetireVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.versionUseCase.RetireVersion(r.Context(), mux.Vars(r)["id"], ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Version retired", version)
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabled handles toggling a version's evaluation eligibility
func (h *VersionHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	version, err := h.versionUseCase.SetVersionEnabled(r.Context(), mux.Vars(r)["id"], req.Enabled, ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Version updated", version)
}

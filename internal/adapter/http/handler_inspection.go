package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/usecase"
)

// InspectionHandler handles HTTP requests for inspections and findings
type InspectionHandler struct {
	inspectionUseCase *usecase.InspectionUseCase
	auth              *AuthMiddleware
}

// NewInspectionHandler creates a new inspection handler
func NewInspectionHandler(inspectionUseCase *usecase.InspectionUseCase, auth *AuthMiddleware) *InspectionHandler {
	return &InspectionHandler{inspectionUseCase: inspectionUseCase, auth: auth}
}

// RegisterRoutes registers inspection routes
func (h *InspectionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/inspections", h.auth.RequireAuth(h.StartInspection)).Methods("POST")
	router.HandleFunc("/api/v1/inspections/{id}", h.GetInspection).Methods("GET")
	router.HandleFunc("/api/v1/inspections/{id}/findings", h.auth.RequireAuth(h.RecordFinding)).Methods("POST")
	router.HandleFunc("/api/v1/inspections/{id}/findings", h.ListFindings).Methods("GET")
	router.HandleFunc("/api/v1/findings/{id}/resolve", h.auth.RequireAuth(h.ResolveTriage)).Methods("POST")
}

type startInspectionRequest struct {
	AssetRef  string                `json:"asset_ref"`
	Type      domain.InspectionType `json:"type"`
	VersionID string                `json:"version_id,omitempty"`
}

// StartInspection handles inspection creation
func (h *InspectionHandler) StartInspection(w http.ResponseWriter, r *http.Request) {
	var req startInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	inspection, err := h.inspectionUseCase.StartInspection(r.Context(), req.AssetRef, req.Type, req.VersionID, ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Inspection started", inspection)
}

// GetInspection handles retrieving a single inspection
func (h *InspectionHandler) GetInspection(w http.ResponseWriter, r *http.Request) {
	inspection, err := h.inspectionUseCase.GetInspection(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Inspection retrieved", inspection)
}

// RecordFinding handles recording and evaluating one observed condition
func (h *InspectionHandler) RecordFinding(w http.ResponseWriter, r *http.Request) {
	var req usecase.RecordFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	req.InspectionID = mux.Vars(r)["id"]

	finding, err := h.inspectionUseCase.RecordFinding(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Finding recorded", finding)
}

// ListFindings handles listing an inspection's findings
func (h *InspectionHandler) ListFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.inspectionUseCase.ListFindings(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Findings retrieved", findings)
}

type resolveTriageRequest struct {
	Outcome domain.Outcome `json:"outcome"`
	Reason  string         `json:"reason"`
}

// ResolveTriage handles confirming or downgrading a triage finding
func (h *InspectionHandler) ResolveTriage(w http.ResponseWriter, r *http.Request) {
	var req resolveTriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	finding, err := h.inspectionUseCase.ResolveTriage(r.Context(), mux.Vars(r)["id"], req.Outcome, ActorFromContext(r.Context()), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Triage resolved", finding)
}

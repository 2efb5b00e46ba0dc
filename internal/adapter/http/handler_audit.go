package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/usecase"
)

// AuditHandler exposes the change log for review
type AuditHandler struct {
	auditUseCase *usecase.AuditUseCase
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditUseCase *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{auditUseCase: auditUseCase}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/audit/{entity_type}/{entity_id}", h.ListByEntity).Methods("GET")
}

// ListByEntity handles retrieving the audit trail for one entity
func (h *AuditHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType := domain.AuditEntityType(vars["entity_type"])
	entityID := vars["entity_id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.auditUseCase.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Audit entries retrieved", entries)
}

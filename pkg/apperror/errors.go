package apperror

import (
	"errors"
	"net/http"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// AppError is the HTTP-facing shape of an engine error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden      = &AppError{Code: "FORBIDDEN", Message: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewConflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusConflict}
}

func NewUnprocessable(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusUnprocessableEntity}
}

// MapError translates engine errors into their HTTP representation.
// Typed domain errors keep distinct codes so callers can react
// programmatically (retry on STALE_VERSION, edit the draft on
// RULE_DEFINITION, and so on).
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ruleDefErr *domain.RuleDefinitionError
	if errors.As(err, &ruleDefErr) {
		return NewUnprocessable("RULE_DEFINITION", ruleDefErr.Error())
	}

	var staleErr *domain.StaleVersionError
	if errors.As(err, &staleErr) {
		return NewConflict("STALE_VERSION", staleErr.Error())
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return NewConflict("INVALID_TRANSITION", transitionErr.Error())
	}

	switch {
	case errors.Is(err, domain.ErrSourceNotFound),
		errors.Is(err, domain.ErrVersionNotFound),
		errors.Is(err, domain.ErrRuleNotFound),
		errors.Is(err, domain.ErrInspectionNotFound),
		errors.Is(err, domain.ErrFindingNotFound),
		errors.Is(err, domain.ErrInspectorNotFound):
		return NewNotFound(unwrapMessage(err))
	case errors.Is(err, domain.ErrInspectorNotQualified):
		return NewForbidden(domain.ErrInspectorNotQualified.Error())
	case errors.Is(err, domain.ErrInvalidAccessCode):
		return NewUnauthorized(domain.ErrInvalidAccessCode.Error())
	case errors.Is(err, domain.ErrNoActiveVersion),
		errors.Is(err, domain.ErrAmbiguousActiveVersion),
		errors.Is(err, domain.ErrVersionNotEvaluable),
		errors.Is(err, domain.ErrVersionNotDraft),
		errors.Is(err, domain.ErrEmptyRuleSet),
		errors.Is(err, domain.ErrDraftNotEnableable),
		errors.Is(err, domain.ErrFindingNotInTriage),
		errors.Is(err, domain.ErrInvalidTriageOutcome):
		return NewConflict("CONFLICT", unwrapMessage(err))
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return NewBadRequest(domainErr.Message)
	}

	return ErrInternalServer
}

func unwrapMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

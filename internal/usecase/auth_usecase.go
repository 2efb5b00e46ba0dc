package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// AuthUseCase authenticates inspectors and issues bearer tokens. The
// engine only needs enough identity to attribute audited transitions;
// full account management stays with the host application.
type AuthUseCase struct {
	inspectorRepo   ports.InspectorRepository
	tokenService    ports.TokenService
	passwordService ports.PasswordService
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(inspectorRepo ports.InspectorRepository, tokenService ports.TokenService, passwordService ports.PasswordService) *AuthUseCase {
	return &AuthUseCase{
		inspectorRepo:   inspectorRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
	}
}

// TokenResult pairs an issued token with the inspector it identifies
type TokenResult struct {
	Token     string            `json:"token"`
	Inspector *domain.Inspector `json:"inspector"`
}

// IssueToken verifies a badge and access code and returns a signed token.
// Unknown badges and wrong codes both map to ErrInvalidAccessCode so the
// response does not reveal which badges exist.
func (uc *AuthUseCase) IssueToken(ctx context.Context, badge, accessCode string) (*TokenResult, error) {
	if badge == "" || accessCode == "" {
		return nil, domain.ErrInvalidAccessCode
	}

	inspector, err := uc.inspectorRepo.FindByBadge(ctx, badge)
	if err != nil {
		if errors.Is(err, domain.ErrInspectorNotFound) {
			return nil, domain.ErrInvalidAccessCode
		}
		return nil, fmt.Errorf("failed to look up inspector: %w", err)
	}

	if err := uc.passwordService.Verify(inspector.AccessCodeHash, accessCode); err != nil {
		return nil, domain.ErrInvalidAccessCode
	}

	token, err := uc.tokenService.GenerateToken(inspector.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResult{Token: token, Inspector: inspector}, nil
}

// RegisterInspector creates an inspector record with a hashed access code
func (uc *AuthUseCase) RegisterInspector(ctx context.Context, name, badge, accessCode string, qualifiedForTriage bool) (*domain.Inspector, error) {
	if name == "" || badge == "" {
		return nil, fmt.Errorf("name and badge are required")
	}
	if len(accessCode) < 8 {
		return nil, fmt.Errorf("access code must be at least 8 characters")
	}

	hash, err := uc.passwordService.Hash(accessCode)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access code: %w", err)
	}

	inspector := domain.NewInspector(name, badge, hash, qualifiedForTriage)
	if err := uc.inspectorRepo.Create(ctx, inspector); err != nil {
		return nil, fmt.Errorf("failed to create inspector: %w", err)
	}
	return inspector, nil
}

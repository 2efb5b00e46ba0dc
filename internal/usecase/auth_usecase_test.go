package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/service/jwtauth"
	"github.com/fleetworks/fleetworks/internal/service/password"
)

func newAuthFixture(t *testing.T) (*AuthUseCase, *jwtauth.JWTService) {
	t.Helper()
	tokenService, err := jwtauth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	uc := NewAuthUseCase(persistence.NewMemoryInspectorRepository(), tokenService, password.NewBcryptService(4))
	return uc, tokenService
}

func TestAuthUseCase_RegisterAndIssueToken(t *testing.T) {
	uc, tokenService := newAuthFixture(t)
	ctx := context.Background()

	inspector, err := uc.RegisterInspector(ctx, "Sam Reyes", "INSP-7", "FleetDemo2026!", true)
	require.NoError(t, err)
	assert.NotEmpty(t, inspector.AccessCodeHash, "hash must be stored")

	result, err := uc.IssueToken(ctx, "INSP-7", "FleetDemo2026!")
	require.NoError(t, err)
	assert.Equal(t, inspector.ID, result.Inspector.ID)

	subject, err := tokenService.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, inspector.ID, subject)
}

func TestAuthUseCase_WrongCodeAndUnknownBadge(t *testing.T) {
	uc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.RegisterInspector(ctx, "Sam Reyes", "INSP-7", "FleetDemo2026!", false)
	require.NoError(t, err)

	_, err = uc.IssueToken(ctx, "INSP-7", "wrong-code")
	assert.ErrorIs(t, err, domain.ErrInvalidAccessCode)

	// unknown badge gets the same error so badge existence is not leaked
	_, err = uc.IssueToken(ctx, "INSP-404", "FleetDemo2026!")
	assert.ErrorIs(t, err, domain.ErrInvalidAccessCode)
}

func TestAuthUseCase_RegisterValidation(t *testing.T) {
	uc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.RegisterInspector(ctx, "", "INSP-7", "FleetDemo2026!", false)
	assert.Error(t, err)

	_, err = uc.RegisterInspector(ctx, "Sam", "INSP-7", "short", false)
	assert.Error(t, err)
}

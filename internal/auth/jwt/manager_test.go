package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentflow/talentflow-backend/pkg/config"
	"github.com/talentflow/talentflow-backend/pkg/errors"
)

func testManager(secret string) *Manager {
	return NewManager(&config.JWTConfig{
		Secret: secret,
		Issuer: "talentflow-auth",
	})
}

func testUser() *UserInfo {
	return &UserInfo{
		ID:          "11111111-2222-3333-4444-555555555555",
		Email:       "hr@example.com",
		Name:        "HR User",
		Role:        "hr_manager",
		Permissions: []string{"eligibility.check", "eligibility.view"},
	}
}

func TestManager_GenerateAndValidate(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.Generate(testUser(), time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", claims.UserID)
	assert.Equal(t, "hr@example.com", claims.Email)
	assert.Equal(t, "hr_manager", claims.Role)
	assert.Equal(t, []string{"eligibility.check", "eligibility.view"}, claims.Permissions)
}

func TestManager_RejectsInvalidTokens(t *testing.T) {
	m := testManager("test-secret")

	expired, err := m.Generate(testUser(), -time.Hour)
	require.NoError(t, err)

	other := testManager("other-secret")
	forged, err := other.Generate(testUser(), time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": forged,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(token)
			require.Error(t, err)

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "TOKEN_INVALID", appErr.Code)
		})
	}
}

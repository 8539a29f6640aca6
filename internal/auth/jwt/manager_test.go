package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinika/clinika-backend/pkg/config"
	"github.com/clinika/clinika-backend/pkg/errors"
)

func newManager(accessExpiry time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "clinika-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := newManager(15 * time.Minute)

	user := &UserInfo{ID: "u-1", Email: "admin@clinika.kg", Name: "Админ", Role: "admin"}
	pair, err := m.GenerateTokenPair(user, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin@clinika.kg", claims.Email)
	assert.Equal(t, "Админ", claims.Name)
	assert.Equal(t, "admin", claims.Role)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refresh.UserID)
	assert.Equal(t, "sess-1", refresh.SessionID)
}

func TestExpiredAccessToken(t *testing.T) {
	m := newManager(-time.Minute)

	pair, err := m.GenerateTokenPair(&UserInfo{ID: "u-1"}, "sess-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	m := newManager(15 * time.Minute)
	other := NewManager(&config.JWTConfig{
		Secret:        "other-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "clinika-test",
	})

	pair, err := other.GenerateTokenPair(&UserInfo{ID: "u-1"}, "sess-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	require.Error(t, err)

	_, err = m.ValidateAccessToken("not-a-token")
	require.Error(t, err)
}

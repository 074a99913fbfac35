package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/solarinvoice/invoicer/internal/config"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(secret string) *Provider {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = secret
	return NewProvider(cfg)
}

func TestValidateToken(t *testing.T) {
	p := newTestProvider("test-secret")

	token, err := p.GenerateToken("user_1", time.Hour)
	require.NoError(t, err)

	claims, err := p.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)
}

func TestValidateTokenRejects(t *testing.T) {
	p := newTestProvider("test-secret")

	expired, err := p.GenerateToken("user_1", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := newTestProvider("other").GenerateToken("user_1", time.Hour)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": otherSecret,
		"no user":      noUser,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ValidateToken(context.Background(), token)
			require.Error(t, err)
			assert.True(t, ierr.IsPermissionDenied(err))
		})
	}
}

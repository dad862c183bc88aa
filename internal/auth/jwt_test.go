package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute)
}

func TestJWTService_Issue(t *testing.T) {
	svc := newTestJWTService()

	token, expiresAt, err := svc.Issue("u-1", "a@libris.test", "USER")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTService_Validate_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.Issue("u-1", "a@libris.test", "ADMIN")
	require.NoError(t, err)

	claims, err := svc.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@libris.test", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestJWTService_Validate_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.Issue("u-1", "a@libris.test", "USER")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_Validate_Invalid(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("another-secret", time.Minute)
	foreign, _, err := other.Issue("u-1", "a@libris.test", "USER")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"wrong signature", foreign},
		{"alg none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_Validate_RequiresUserID(t *testing.T) {
	svc := newTestJWTService()
	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	token, err := bare.SignedString(svc.secretKey)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("Passw0rd!", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "Passw0rd!"))
	assert.False(t, CheckPassword(h, "wrong"))
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourfin-enon/coinspaid-connector/internal/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	return New(&config.AuthConfig{
		JWTSecret:            "test-secret",
		TokenExpiry:          time.Hour,
		OperatorUsername:     "operator",
		OperatorPasswordHash: hash,
	})
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.Login("operator", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Login("operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("admin", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Disabled(t *testing.T) {
	svc := New(&config.AuthConfig{JWTSecret: "s", OperatorUsername: "operator"})

	_, _, err := svc.Login("operator", "")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService(t)
	token, _, err := svc.Login("operator", "correct horse")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService(t)
	token, _, err := svc.Login("operator", "correct horse")
	require.NoError(t, err)

	other := New(&config.AuthConfig{JWTSecret: "another-secret"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

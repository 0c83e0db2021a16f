package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	in := Claims{UserID: 42, Email: "ada@example.com", Name: "Ada", Role: "organizer"}
	tok, err := NewAccessToken(testSecret, in, 24)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tok.Exp, time.Minute)

	out, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, Claims{UserID: 1, Role: "vendor"}, 24)
	require.NoError(t, err)

	_, err = ParseAccessToken("another-secret", tok.Token)
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	now := time.Now().UTC()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(7),
		"role": "vendor",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.Error(t, err)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsUnexpectedAlgorithm(t *testing.T) {
	// alg=none with an empty signature must never verify.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  float64(7),
		"role": "vendor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.Error(t, err)
}

func TestParseAccessTokenMissingRole(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.Error(t, err)
}

func TestParseAccessTokenMissingSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "vendor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.Error(t, err)
}

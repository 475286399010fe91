package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, "5m")

	token, expiresIn, err := svc.GenerateSSEToken("caregiver-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 300, expiresIn)

	caregiverID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "caregiver-1", caregiverID)
}

func TestValidateSSEToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(testSecret, "5m")
	verifier := NewJWTService("another-secret", "5m")

	token, _, err := issuer.GenerateSSEToken("caregiver-1")
	require.NoError(t, err)

	_, err = verifier.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "5m")

	// A token minted with the access type must not open a stream.
	impl := svc.(*JWTService)
	_, tokenString, err := impl.tokenAuth.Encode(map[string]interface{}{
		"caregiver_id": "caregiver-1",
		"type":         "access",
	})
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(tokenString)
	assert.Error(t, err)
}

func TestValidateSSEToken_Garbage(t *testing.T) {
	svc := NewJWTService(testSecret, "5m")

	_, err := svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTService_TTLFallback(t *testing.T) {
	svc := NewJWTService(testSecret, "bogus")

	_, expiresIn, err := svc.GenerateSSEToken("caregiver-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn, "invalid TTL falls back to 5 minutes")
}

package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSignAndParseAccessToken(t *testing.T) {
	raw, err := SignAccessToken("user-1", "ana@example.com", testSecret, AccessTokenTTL)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := AccessClaimsFromToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAccessClaimsFromToken_WrongSecret(t *testing.T) {
	raw, err := SignAccessToken("user-1", "ana@example.com", testSecret, AccessTokenTTL)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(raw, []byte("other-secret"))
	assert.Error(t, err)
}

func TestAccessClaimsFromToken_Expired(t *testing.T) {
	raw, err := SignAccessToken("user-1", "ana@example.com", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(raw, testSecret)
	assert.Error(t, err)
}

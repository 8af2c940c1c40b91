package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := uuid.New()
	tok, err := NewAccessToken("secret", user, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestParseAccessTokenRejects(t *testing.T) {
	user := uuid.New()

	wrongKey, err := NewAccessToken("other", user, time.Hour)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", wrongKey.Token)
	assert.Error(t, err)

	expired, err := NewAccessToken("secret", user, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": user.String()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", noExp)
	assert.Error(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", badSub)
	assert.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": user.String(), "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", hs512)
	assert.Error(t, err)

	_, err = NewAccessToken("", user, time.Hour)
	assert.Error(t, err)
}

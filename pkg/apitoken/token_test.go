package apitoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	secret := []byte("s3cret")
	raw, err := Issue(secret, "kiosko-1", "client", time.Hour)
	require.NoError(t, err)

	c, err := Parse(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, "kiosko-1", c.Subject)
	assert.Equal(t, "client", c.Role)
	assert.NotNil(t, c.ExpiresAt)
}

func TestParseRejects(t *testing.T) {
	raw, err := Issue([]byte("a"), "x", "", 0)
	require.NoError(t, err)
	_, err = Parse([]byte("b"), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := Issue([]byte("a"), "x", "", -time.Hour)
	require.NoError(t, err)
	_, err = Parse([]byte("a"), noExpiry)
	assert.NoError(t, err)

	past := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "x", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	rawPast, err := past.SignedString([]byte("a"))
	require.NoError(t, err)
	_, err = Parse([]byte("a"), rawPast)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x", Issuer: "other"})
	rawForeign, err := foreign.SignedString([]byte("a"))
	require.NoError(t, err)
	_, err = Parse([]byte("a"), rawForeign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse([]byte("a"), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueValidates(t *testing.T) {
	_, err := Issue([]byte("a"), "  ", "", time.Hour)
	assert.Error(t, err)
	_, err = Issue(nil, "x", "", time.Hour)
	assert.Error(t, err)
}

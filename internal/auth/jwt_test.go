package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	iss, err := NewIssuer("secret", "blindpair-service", time.Hour)
	require.NoError(t, err)

	token, err := iss.Sign("alice", "uni-1")
	require.NoError(t, err)

	claims, err := iss.Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, "uni-1", claims.InstitutionID)
}

func TestParse_Rejects(t *testing.T) {
	iss, err := NewIssuer("secret", "blindpair-service", time.Hour)
	require.NoError(t, err)

	_, err = iss.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewIssuer("other-secret", "blindpair-service", time.Hour)
	require.NoError(t, err)
	token, err := other.Sign("alice", "uni-1")
	require.NoError(t, err)
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewIssuer("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	token, err = foreign.Sign("alice", "uni-1")
	require.NoError(t, err)
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err = iss.Sign("alice", "")
	require.NoError(t, err)
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestParse_Expired(t *testing.T) {
	iss, err := NewIssuer("secret", "blindpair-service", time.Minute)
	require.NoError(t, err)
	token, err := iss.Sign("alice", "uni-1")
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	iss, err := NewIssuer("secret", "blindpair-service", time.Hour)
	require.NoError(t, err)

	claims := Claims{UserID: "alice", InstitutionID: "uni-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "blindpair-service"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "x", time.Hour)
	assert.Error(t, err)
}

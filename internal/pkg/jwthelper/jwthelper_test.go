package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

var testUser = domain.User{
	ID:    "0d6c3a5e-7d0f-4a4c-9a7e-2f1b5c3d4e5f",
	Email: "ada@example.com",
	Role:  domain.RoleOrganizer,
}

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.UserID)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, "ORGANIZER", claims.Role)
	assert.Equal(t, testUser.ID, claims.Subject)

	viewer := claims.Viewer()
	assert.True(t, viewer.IsAuthenticated())
	assert.Equal(t, domain.RoleOrganizer, viewer.Role)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken([]byte("key-a"), testUser, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("key-b"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken([]byte("key"), testUser, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken([]byte("key"), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: testUser.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken([]byte("key"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken([]byte("key"), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

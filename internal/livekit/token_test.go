package livekit

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestToken(t *testing.T, raw, secret string) *tokenClaims {
	t.Helper()

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func TestMintTokenClaims(t *testing.T) {
	raw, err := mintToken("api-key", "api-secret", "alice", participantGrant("support-1", false))
	require.NoError(t, err)

	claims := parseTestToken(t, raw, "api-secret")
	assert.Equal(t, "api-key", claims.Issuer)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice", claims.Name)
	assert.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.NotBefore.Time))
}

func TestMintTokenRejectsWrongSecret(t *testing.T) {
	raw, err := mintToken("api-key", "api-secret", "alice", participantGrant("support-1", false))
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestParticipantGrant(t *testing.T) {
	grant := participantGrant("support-1", false)
	assert.True(t, grant.RoomJoin)
	assert.Equal(t, "support-1", grant.Room)
	assert.True(t, grant.CanPublish)
	assert.True(t, grant.CanSubscribe)
	assert.True(t, grant.CanPublishData)
	assert.False(t, grant.RoomAdmin)
	assert.False(t, grant.CanUpdateOwnMetadata)
}

func TestParticipantGrantAgent(t *testing.T) {
	grant := participantGrant("support-1", true)
	assert.True(t, grant.RoomAdmin)
	assert.True(t, grant.CanUpdateOwnMetadata)
}

func TestAdminGrant(t *testing.T) {
	grant := adminGrant("support-1")
	assert.True(t, grant.RoomAdmin)
	assert.True(t, grant.RoomCreate)
	assert.True(t, grant.RoomList)
	assert.False(t, grant.RoomJoin)
}

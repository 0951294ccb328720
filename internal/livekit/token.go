package livekit

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL bounds how long a minted join credential stays valid.
const tokenTTL = 6 * time.Hour

// VideoGrant mirrors the provider's room permission claim.
type VideoGrant struct {
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	Room                 string `json:"room,omitempty"`
	RoomAdmin            bool   `json:"roomAdmin,omitempty"`
	RoomCreate           bool   `json:"roomCreate,omitempty"`
	RoomList             bool   `json:"roomList,omitempty"`
	CanPublish           bool   `json:"canPublish,omitempty"`
	CanSubscribe         bool   `json:"canSubscribe,omitempty"`
	CanPublishData       bool   `json:"canPublishData,omitempty"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata,omitempty"`
}

// tokenClaims is the JWT payload the provider expects: registered claims
// issued under the API key plus the video grant.
type tokenClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
}

// mintToken signs an HS256 join token for the identity, scoped to the room.
func mintToken(apiKey, apiSecret, identity string, grant VideoGrant) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Name:  identity,
		Video: grant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(apiSecret))
}

// participantGrant builds the video grant for a room participant. Agents
// get room administration and own-metadata rights in addition to the
// publish/subscribe rights everyone gets.
func participantGrant(room string, isAgent bool) VideoGrant {
	grant := VideoGrant{
		RoomJoin:       true,
		Room:           room,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}
	if isAgent {
		grant.RoomAdmin = true
		grant.CanUpdateOwnMetadata = true
	}
	return grant
}

// adminGrant builds the video grant used for server-to-server API calls.
func adminGrant(room string) VideoGrant {
	return VideoGrant{
		Room:       room,
		RoomAdmin:  true,
		RoomCreate: true,
		RoomList:   true,
	}
}

// Package auth issues and verifies the short-lived join tokens that gate the
// WebSocket endpoint. A token binds one player to one room.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// malformed or incomplete claims.
var ErrInvalidToken = errors.New("invalid join token")

// DefaultTokenTTL bounds how long a join token stays usable after a join.
const DefaultTokenTTL = 15 * time.Minute

// JoinClaims are the claims carried by a WebSocket join token.
type JoinClaims struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// IssueJoinToken signs a token for playerID to connect to roomID.
func IssueJoinToken(secret, roomID, playerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JoinClaims{
		RoomID:   roomID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign join token: %w", err)
	}
	return signed, nil
}

// VerifyJoinToken parses and validates a join token, returning its claims.
func VerifyJoinToken(secret, raw string) (JoinClaims, error) {
	var claims JoinClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return JoinClaims{}, ErrInvalidToken
	}
	if claims.RoomID == "" || claims.PlayerID == "" {
		return JoinClaims{}, ErrInvalidToken
	}
	return claims, nil
}

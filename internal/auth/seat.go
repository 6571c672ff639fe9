// internal/auth/seat.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Seat tokens prove prior membership in a room: create/join acks carry one,
// and a client whose socket dropped can present it to rejoin its room (and
// display name) while the room still exists. Keys are generated fresh at
// startup — tokens intentionally do not outlive the process, since rooms
// don't either.

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

const tokenTTL = 24 * time.Hour

// Init generates the ed25519 key pair used to sign and verify seat tokens.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return nil
}

// SeatClaims identify a previously held seat.
type SeatClaims struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
	jwt.RegisteredClaims
}

// CreateSeatToken signs a token for the given room membership.
func CreateSeatToken(roomCode, name string, seat int) (string, error) {
	claims := SeatClaims{
		Room: roomCode,
		Name: name,
		Seat: seat,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// VerifySeatToken validates a token and returns its claims.
func VerifySeatToken(tokenStr string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid seat token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid seat token")
	}
	return claims, nil
}

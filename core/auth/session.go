package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is the fixed session lifetime. There is no sliding renewal; a
// session simply expires 30 days after issuance.
const SessionTTL = 30 * 24 * time.Hour

// SessionClaims is the payload carried by a session token. Only the internal
// user id is embedded; the token is integrity-protected, not confidential.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken mints a signed session token bound to the given user id.
// The jti uniquely identifies this session so logout can revoke it.
func GenerateSessionToken(secret []byte, userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken verifies a session token's signature and expiry and
// returns its claims.
func ParseSessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, fmt.Errorf("session token missing required claims")
	}
	return claims, nil
}

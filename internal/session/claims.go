package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DevSharedSecret is the HS256 signing key used by local development
// backends. It exists only so tooling can sanity-check tokens issued
// by a local backend; the client never enforces signatures and real
// deployments sign with their own keys.
const DevSharedSecret = "your-secret-key"

// ParseClaims decodes the token's registered claims without verifying
// the signature. The client holds no production signing key, so the
// result is informational (expiry display), never an access decision.
// The subject claim carries the user ID; expiry is 24 hours from issue.
func ParseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// VerifyDevSigned checks the token's signature and expiry against
// DevSharedSecret. Only meaningful against a local development backend.
func VerifyDevSigned(token string) error {
	_, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(DevSharedSecret), nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to verify token: %w", err)
	}
	return nil
}

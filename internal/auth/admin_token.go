package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims identifies the admin CLI operator issuing a remote request.
type AdminClaims struct {
	jwt.RegisteredClaims
	Subject string `json:"sub"`
}

// AdminTokenIssuer signs and verifies short-lived tokens used by the admin
// CLI when talking to the gateway's admin API in remote mode. This is
// separate from tenant API-key auth on the completion path.
type AdminTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewAdminTokenIssuer builds an issuer. A zero ttl defaults to 15 minutes.
func NewAdminTokenIssuer(secret string, ttl time.Duration) *AdminTokenIssuer {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &AdminTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a new admin token for subject.
func (i *AdminTokenIssuer) Issue(subject string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Subject: subject,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates tokenString, returning the subject it was
// issued for.
func (i *AdminTokenIssuer) Verify(tokenString string) (string, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse admin token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid admin token")
	}
	return claims.Subject, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the visitor cookie payload.
type Claims struct {
	Visitor string `json:"vid"`
	jwt.RegisteredClaims
}

// Issue signs a visitor token valid for ttl.
func Issue(visitorID, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	if visitorID == "" {
		return "", time.Time{}, errors.New("visitor id required")
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Visitor: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   visitorID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates a visitor token and returns its claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	if claims.Visitor == "" {
		return Claims{}, errors.New("visitor id missing")
	}
	return *claims, nil
}

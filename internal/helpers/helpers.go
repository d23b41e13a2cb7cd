package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken parses and validates a token from the external auth
// provider. When a JWKS URL is configured the provider's published
// keys are used; otherwise the shared HS256 secret is expected
// (development setups).
func ValidateToken(tokenStr, jwksURL, hmacSecret string) (*CustomClaims, error) {
	if jwksURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{Ctx: ctx})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %v", err)
		}
		defer jwks.EndBackground()

		token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
		if err != nil {
			return nil, fmt.Errorf("token validation failed: %v", err)
		}
		return claimsFrom(token)
	}

	if hmacSecret == "" {
		return nil, errors.New("no JWKS URL or token secret configured")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(hmacSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}
	return claimsFrom(token)
}

func claimsFrom(token *jwt.Token) (*CustomClaims, error) {
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug builds a URL-safe slug from the venue name and location.
func GenerateSlug(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	slug := slugPattern.ReplaceAllString(joined, "-")
	return strings.Trim(slug, "-")
}

// StringTrim collapses surrounding whitespace.
func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gametracker/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ownerSubject = "owner"

// OwnerClaims represents the JWT claims issued to the catalog owner
type OwnerClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies owner tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer from the auth configuration
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	ttl := cfg.JWTExpiration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now}
}

// Issue creates a new signed owner token
func (t *TokenIssuer) Issue() (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := OwnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify parses tokenString and checks it was issued to the owner
func (t *TokenIssuer) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*OwnerClaims)
	if !ok || !token.Valid || claims.Subject != ownerSubject {
		return errors.New("invalid token")
	}
	return nil
}

// RequireOwner rejects requests without a valid owner token. A nil issuer
// means auth is disabled and every request passes.
func RequireOwner(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		if err := issuer.Verify(tokenString); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

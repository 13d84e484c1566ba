package middleware

import (
	"errors"
	"net/http"
	"strings"

	"movexa_cms/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthClaimsKey = "authClaims"
	AuthUserKey   = "authUser"
	AuthRoleKey   = "authRole"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	ValidateToken(token string) (*utils.JWTClaims, error)
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <t>"
// header. The scheme is case-insensitive.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}

// GetClaims returns the claims stored by JWTAuthMiddleware
func GetClaims(c *gin.Context) (*utils.JWTClaims, bool) {
	v, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.JWTClaims)
	return claims, ok
}

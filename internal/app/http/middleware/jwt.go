package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"inventory-app/config"
	"inventory-app/internal/domain/access"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Identify parses the Bearer token when one is present and stores the
// principal in the context. It never aborts: anonymous requests continue
// and downstream middleware decides what needs authentication.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(config.JWT_SECRET), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}

		p := access.Principal{Authenticated: true}
		if email, ok := claims["email"].(string); ok {
			p.Email = email
		}
		if role, ok := claims["role"].(string); ok {
			p.Role = role
		}
		if userID, ok := claims["user_id"].(float64); ok {
			p.UserID = uint(userID)
		}
		c.Set(principalKey, p)

		c.Next()
	}
}

// CurrentPrincipal returns the identity Identify stored, or the anonymous
// zero value.
func CurrentPrincipal(c *gin.Context) access.Principal {
	value, exists := c.Get(principalKey)
	if !exists {
		return access.Principal{}
	}
	p, ok := value.(access.Principal)
	if !ok {
		return access.Principal{}
	}
	return p
}

// SetPrincipal is a test hook for handler tests that skip Identify.
func SetPrincipal(c *gin.Context, p access.Principal) {
	c.Set(principalKey, p)
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if !p.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	userRepo "anoa.com/wanderhub/internal/modules/user/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   []byte
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   []byte(secret),
	}
}

var (
	errNoToken      = errors.New("authorization required")
	errInvalidToken = errors.New("invalid or expired token")
	errBadSubject   = errors.New("invalid token subject")
)

// subject extracts and verifies the bearer token and returns its subject.
func (m *AuthMiddleware) subject(c *gin.Context) (string, error) {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	// Browsers cannot set headers on websocket upgrades.
	if tokenString == "" {
		tokenString = c.Query("token")
	}

	if tokenString == "" {
		return "", errNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", errInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errBadSubject
	}
	return claims.Subject, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := m.subject(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("user_id", sub)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub, err := m.subject(c); err == nil {
			c.Set("user_id", sub)
		}
		c.Next()
	}
}

// RequireAdmin lets admins and moderators through.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetString("user_id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !user.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// LoadRole attaches the caller's role when known so handlers can allow
// staff to moderate content. Unknown users continue as plain users.
func (m *AuthMiddleware) LoadRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := uuid.Parse(c.GetString("user_id")); err == nil {
			if user, err := m.userRepo.FindByID(c.Request.Context(), userID); err == nil {
				c.Set("user_role", user.Role)
			}
		}
		c.Next()
	}
}

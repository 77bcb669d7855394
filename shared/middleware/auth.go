package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/rs/zerolog/log"
)

const claimsKey = "claims"

var (
	jwtSecretMu  sync.RWMutex
	jwtSecretVal []byte
)

// InitJWTSecret sets the HS256 key used to sign and verify tokens.
func InitJWTSecret(secret string) error {
	if secret == "" {
		return errors.New("JWT secret is empty")
	}
	jwtSecretMu.Lock()
	jwtSecretVal = []byte(secret)
	jwtSecretMu.Unlock()
	return nil
}

func MustInitJWTSecret(secret string) {
	if err := InitJWTSecret(secret); err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET is not set")
	}
}

// JWTSecret returns the signing key. It panics when InitJWTSecret was never called.
func JWTSecret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	if len(jwtSecretVal) == 0 {
		panic("JWT secret is not initialised")
	}
	return jwtSecretVal
}

type Claims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Areas    []string `json:"areas"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return strings.EqualFold(c.Role, models.RoleAdmin)
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return JWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware. Roles compare case-insensitively.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if strings.EqualFold(claims.Role, role) {
				c.Next()
				return
			}
		}
		RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
		c.Abort()
	}
}

// SetClaims stores the authenticated caller on the request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
	c.Set("userId", claims.UserID)
	c.Set("role", claims.Role)
}

func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		return "", false
	}
	return userID.(string), true
}

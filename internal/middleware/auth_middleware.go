package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/Dhoini/storefront-payments/pkg/res"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста во избежание коллизий.
type ContextKey string

const (
	// ContextIdentityKey ключ для хранения идентичности пользователя в контексте.
	ContextIdentityKey ContextKey = "identity"
	authHeaderPrefix              = "Bearer "
)

// TokenValidator интерфейс проверки токена аутентификации
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims полезная нагрузка токена
type TokenClaims struct {
	UserEmail string `json:"email"`
	UserName  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTMiddleware middleware аутентификации по JWT
type JWTMiddleware struct {
	log       *logger.Logger
	zapLog    *zap.Logger
	validator TokenValidator
}

// NewJWTMiddleware создает новый middleware аутентификации
func NewJWTMiddleware(log *logger.Logger, zapLog *zap.Logger, validator TokenValidator) *JWTMiddleware {
	return &JWTMiddleware{
		log:       log,
		zapLog:    zapLog,
		validator: validator,
	}
}

// RequireAuth проверяет токен и кладет идентичность пользователя в контекст
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.handleAuthError(c, "Missing authorization token")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, authHeaderPrefix)
		claims, err := m.validator.Validate(tokenString)
		if err != nil {
			m.handleAuthError(c, fmt.Sprintf("Token validation failed: %v", err))
			return
		}

		userID := claims.Subject
		if userID == "" {
			m.handleAuthError(c, "User ID (sub) missing in token")
			return
		}

		identity := domain.Identity{
			UserID: userID,
			Email:  claims.UserEmail,
			Name:   claims.UserName,
		}
		c.Set(string(ContextIdentityKey), identity)

		m.log.Debugw("User authenticated via HTTP", "userID", userID)
		c.Next()
	}
}

// IdentityFromContext возвращает идентичность пользователя из контекста запроса
func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	value, exists := c.Get(string(ContextIdentityKey))
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, message string) {
	m.log.Warnw("HTTP Authentication failed", "path", c.Request.URL.Path, "error", message)
	res.JsonErrorResponse(c.Writer, res.ErrorResponse{
		Message:   "Unauthorized",
		ErrorCode: http.StatusUnauthorized,
	}, http.StatusUnauthorized, m.zapLog)
	c.Abort()
}

// DefaultTokenValidator - реализация валидатора по умолчанию.
type DefaultTokenValidator struct {
	Secret []byte
}

// Validate проверяет JWT токен и возвращает его полезную нагрузку
func (v *DefaultTokenValidator) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, errors.New("malformed token")
		} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, errors.New("invalid token signature")
		} else if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, errors.New("token expired")
		} else {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

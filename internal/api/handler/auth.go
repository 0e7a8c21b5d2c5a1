package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer  = "ward-complaints"
	roleOperator = "operator"
	operatorKey  = "operator"
)

// OperatorClaims are carried by operator tokens.
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateOperatorToken issues an HS256 token for the named operator.
func GenerateOperatorToken(secret []byte, operator string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := OperatorClaims{
		Role: roleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   operator,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseOperatorToken validates tokenString and returns the operator name.
func ParseOperatorToken(secret []byte, tokenString string) (string, error) {
	claims := &OperatorClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Role != roleOperator || claims.Subject == "" {
		return "", errors.New("token is not an operator token")
	}
	return claims.Subject, nil
}

// RequireOperator rejects requests without a valid operator bearer token.
func (h *Handler) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" || len(h.JWTSecret) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": h.message(c, localization.KeyUnauthorized)})
			return
		}

		operator, err := ParseOperatorToken(h.JWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": h.message(c, localization.KeyUnauthorized)})
			return
		}

		c.Set(operatorKey, operator)
		c.Next()
	}
}

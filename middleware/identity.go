package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/config"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
)

// IdentityClaims carries the principal attributes the resolver needs. The
// token is issued by the upstream identity provider; this service only
// verifies and reads it.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	Superuser bool   `json:"superuser"`
}

// Identity authenticates the request and places the acting principal on the
// gin context. Resolution itself never widens for an unauthenticated caller,
// but rejecting here keeps the rest of the handlers simple.
func Identity() gin.HandlerFunc {
	secret := []byte(config.GetString("auth.jwt.secret"))

	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			logger.Warn("Rejecting request with invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("requestingUserID", claims.Subject)
		c.Set("requestingUser", claims.Username)
		c.Set("isSuperuser", claims.Superuser)

		c.Next()
	}
}

func parseToken(tokenString string, secret []byte) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// PrincipalFromContext rebuilds the principal placed on the context by
// Identity. Handlers treat a missing principal as unauthenticated rather than
// failing, matching the resolver's fail-closed behavior.
func PrincipalFromContext(c *gin.Context) model.Principal {
	userID, exists := c.Get("userID")
	if !exists {
		return model.Principal{}
	}
	principal := model.Principal{
		ID:              userID.(string),
		IsAuthenticated: true,
	}
	if superuser, ok := c.Get("isSuperuser"); ok {
		principal.IsSuperuser, _ = superuser.(bool)
	}
	return principal
}

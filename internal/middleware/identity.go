package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slot-booking-api/internal/models"
)

// ContextCallerKey is the gin context key storing caller claims.
const ContextCallerKey = "caller"

type tokenValidator interface {
	Validate(token string) (*models.CallerClaims, error)
}

// Identity attaches caller claims when a valid bearer token is present. It
// never rejects a request; operations that need an identity check for it.
func Identity(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || validator == nil {
			c.Next()
			return
		}
		if claims, err := validator.Validate(token); err == nil {
			c.Set(ContextCallerKey, claims)
		}
		c.Next()
	}
}

// Caller returns the claims attached by Identity, or nil.
func Caller(c *gin.Context) *models.CallerClaims {
	value, exists := c.Get(ContextCallerKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.CallerClaims)
	return claims
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

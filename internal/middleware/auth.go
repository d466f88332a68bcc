package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
)

// AuthMiddleware extracts the caller from the bearer token. Signature and
// expiry are verified by the gateway in front of the service; here we only
// read the claims. Roles are the realm roles plus those granted to clientID.
func AuthMiddleware(clientID string) gin.HandlerFunc {
	parser := jwt.NewParser()

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims := &models.JWTClaims{}
		if _, _, err := parser.ParseUnverified(strings.TrimSpace(parts[1]), claims); err != nil {
			observability.Logger().Warn("failed to extract claims from token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		principal := claims.Principal(clientID)
		if principal.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			return
		}

		c.Set(models.PrincipalContextKey, principal)
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or nil
func GetPrincipal(c *gin.Context) *models.Principal {
	value, exists := c.Get(models.PrincipalContextKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*models.Principal)
	return principal
}

// RequireAnyRole rejects callers holding none of roles
func RequireAnyRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !principal.HasAnyRole(roles...) {
			observability.Logger().Debug("role check failed",
				zap.String("user_id", principal.UserID),
				zap.Any("required", roles))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient privileges"})
			return
		}
		c.Next()
	}
}

// RequireAdmin checks if the user has admin privileges
func RequireAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin)
}

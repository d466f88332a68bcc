package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qcbd/app-beneficiary/internal/utils"
)

// AuditContext attaches the caller, client address and request id to the
// request context so services can record who changed what. Run it after
// RequestID and AuthMiddleware.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		auditCtx := utils.GetAuditContextFromGin(c)
		c.Request = c.Request.WithContext(utils.WithAuditContext(c.Request.Context(), auditCtx))
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorai-backend/internal/http/response"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	identity services.IdentityService
}

func NewAuthMiddleware(log *logger.Logger, identity services.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), identity: identity}
}

// RequireAuth resolves the caller and attaches id, plan and usage snapshot to the
// request context. Failures end the request with a 200 failure envelope.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd, err := am.identity.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			am.log.Debug("auth rejected", "path", c.FullPath(), "error", err)
			response.AbortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Set("user_id", rd.UserID)
		c.Set("plan", string(rd.Plan))
		c.Next()
	}
}

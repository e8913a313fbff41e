package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
)

// Envelope is the body of every AI endpoint response. The HTTP status is always 200;
// Success tells the client which branch it got.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
}

func RespondContent(c *gin.Context, content string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Content: content})
}

// RespondError writes err's client-facing message in a failed envelope.
func RespondError(c *gin.Context, err error) {
	msg := apierr.Message(err)
	if msg == "" {
		msg = "unknown error"
	}
	c.JSON(http.StatusOK, Envelope{Success: false, Message: msg})
}

// AbortWithError is RespondError for middleware.
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

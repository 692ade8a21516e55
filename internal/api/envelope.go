package api

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respond writes a success envelope. fields are merged into the body.
func respond(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps err onto its status code and writes a failure envelope.
// The cause is only exposed for server errors.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	body := gin.H{
		"success": false,
		"message": apperr.Message(err),
	}
	if status >= http.StatusInternalServerError {
		body["error"] = err.Error()
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, body)
}

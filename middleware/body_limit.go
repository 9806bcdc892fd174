package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/quickpost/models"
)

// DefaultMaxBodyBytes fits a maximum-size post whose every byte is sent as a
// six-byte \uXXXX escape, plus room for the surrounding JSON.
const DefaultMaxBodyBytes = 6*models.MaxPostBytes + 64<<10

// BodyLimit caps request bodies; reads past the limit fail in the binder.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		}
		ctx.Next()
	}
}

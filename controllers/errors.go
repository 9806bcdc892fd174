package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/middleware"
	"github.com/cppla/quickpost/models"
	"github.com/cppla/quickpost/utils"
)

// respondError translates a service error into the JSON envelope.
// Internal failures are logged and replaced with a generic message.
func respondError(ctx *gin.Context, log *zap.Logger, err error) {
	var status, code int
	switch apperr.KindOf(err) {
	case apperr.InvalidInput:
		status, code = http.StatusBadRequest, 40001
	case apperr.Unauthorized, apperr.Expired, apperr.Invalid:
		status, code = http.StatusUnauthorized, 40110
	case apperr.NotFound:
		status, code = http.StatusNotFound, 40401
	case apperr.Conflict:
		status, code = http.StatusConflict, 40901
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.RequestIDFrom(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
		return
	}
	utils.Error(ctx, status, code, apperr.MessageOf(err))
}

// respondBindError reports a payload that could not be decoded.
func respondBindError(ctx *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "request body too large")
		return
	}
	utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
}

func currentUser(ctx *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return user, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/models"
	"github.com/cppla/quickpost/utils"
)

const (
	// ContextUserKey is the key used to store the authenticated user in Gin context.
	ContextUserKey = "user"
	// TokenHeader carries a bare token for clients that do not send Authorization.
	TokenHeader = "token"
)

// Authenticator resolves a bearer token to a current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthRequired ensures the request carries a token for a user that still exists.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, code, msg := extractToken(ctx)
		if code != 0 {
			utils.AbortError(ctx, http.StatusUnauthorized, code, msg)
			return
		}

		user, err := auth.Authenticate(ctx.Request.Context(), tokenString)
		if err != nil {
			if apperr.Is(err, apperr.Unauthorized) {
				code := 40105
				if apperr.Has(err, apperr.Expired) {
					code = 40106
				}
				utils.AbortError(ctx, http.StatusUnauthorized, code, apperr.MessageOf(err))
				return
			}
			_ = ctx.Error(err)
			utils.AbortError(ctx, http.StatusInternalServerError, 50001, "failed to authenticate")
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(ctx *gin.Context) (models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func extractToken(ctx *gin.Context) (string, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		if t := strings.TrimSpace(ctx.GetHeader(TokenHeader)); t != "" {
			return t, 0, ""
		}
		return "", 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", 40102, "invalid authorization header format"
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", 40103, "empty bearer token"
	}
	return tokenString, 0, ""
}

package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/services"
	"github.com/cppla/quickpost/utils"
)

// AuthController handles signup, login and the current-user endpoint.
type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new user.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := a.auth.Signup(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, a.log, err)
		return
	}
	utils.Success(ctx, gin.H{"id": user.ID, "email": user.Email})
}

// Login exchanges credentials for a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	token, err := a.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, a.log, err)
		return
	}
	utils.Success(ctx, gin.H{"token": token, "token_type": "bearer"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"id": user.ID, "email": user.Email})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/services"
	"github.com/cppla/quickpost/utils"
)

// PostController exposes the authenticated user's posts.
type PostController struct {
	posts *services.PostService
	log   *zap.Logger
}

// NewPostController creates a PostController.
func NewPostController(posts *services.PostService, log *zap.Logger) *PostController {
	return &PostController{posts: posts, log: log}
}

type postTextRequest struct {
	Text string `json:"text"`
}

// AddPost creates a post for the current user.
func (p *PostController) AddPost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req postTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	post, err := p.posts.AddPost(ctx.Request.Context(), user, req.Text)
	if err != nil {
		respondError(ctx, p.log, err)
		return
	}
	utils.Success(ctx, post)
}

// ListPosts returns every post of the current user in creation order.
func (p *PostController) ListPosts(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	posts, err := p.posts.ListPosts(ctx.Request.Context(), user)
	if err != nil {
		respondError(ctx, p.log, err)
		return
	}
	utils.Success(ctx, posts)
}

// GetPost returns one post of the current user.
func (p *PostController) GetPost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	post, err := p.posts.GetPost(ctx.Request.Context(), user, postID)
	if err != nil {
		respondError(ctx, p.log, err)
		return
	}
	utils.Success(ctx, post)
}

// UpdatePost replaces the text of one of the current user's posts.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	var req postTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	post, err := p.posts.UpdatePost(ctx.Request.Context(), user, postID, req.Text)
	if err != nil {
		respondError(ctx, p.log, err)
		return
	}
	utils.Success(ctx, post)
}

// DeletePost removes one of the current user's posts.
func (p *PostController) DeletePost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}
	if err := p.posts.DeletePost(ctx.Request.Context(), user, postID); err != nil {
		respondError(ctx, p.log, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// parsePostID reads :id, or :post_id on the legacy route.
func parsePostID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	if raw == "" {
		raw = ctx.Param("post_id")
	}
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid post id")
		return 0, false
	}
	return uint(id), true
}

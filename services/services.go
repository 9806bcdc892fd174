// Package services holds the signup, login and post operations. Handlers call
// into it with an already authenticated user; it talks to the store and the
// listing cache and reports failures as apperr kinds.
package services

import (
	"context"

	"github.com/cppla/quickpost/models"
)

// UserStore is the part of the credential store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id uint) (models.User, error)
}

// PostStore is the part of the credential store the post service needs.
type PostStore interface {
	CreatePost(ctx context.Context, ownerID uint, text string) (models.Post, error)
	PostsByOwner(ctx context.Context, ownerID uint) ([]models.Post, error)
	PostByOwner(ctx context.Context, ownerID, postID uint) (models.Post, error)
	UpdatePostText(ctx context.Context, ownerID, postID uint, text string) (models.Post, error)
	DeletePost(ctx context.Context, ownerID, postID uint) error
}

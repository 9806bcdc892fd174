package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/models"
	"github.com/cppla/quickpost/utils"
)

// PostService manages a user's posts and the cached listing at
// utils.PostsCacheKey(user.ID).
//
// The listing is read-through and every mutation deletes the key after the
// store commits. A ListPosts that misses the cache and queries the store
// before a concurrent mutation commits can still write its older list after
// that mutation's invalidation. That list is served until the TTL expires.
// This window is accepted; nothing in the service closes it.
type PostService struct {
	posts     PostStore
	cache     utils.Cache
	ttl       time.Duration
	sanitizer utils.PostSanitizer
	log       *zap.Logger
}

// NewPostService builds a PostService. A non-positive ttl uses
// utils.DefaultCacheTTL and a nil logger discards output.
func NewPostService(posts PostStore, cache utils.Cache, ttl time.Duration, sanitizer utils.PostSanitizer, log *zap.Logger) *PostService {
	if ttl <= 0 {
		ttl = utils.DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{posts: posts, cache: cache, ttl: ttl, sanitizer: sanitizer, log: log}
}

// AddPost stores a new post owned by user.
func (s *PostService) AddPost(ctx context.Context, user models.User, text string) (models.Post, error) {
	text, err := s.cleanText(text)
	if err != nil {
		return models.Post{}, err
	}
	post, err := s.posts.CreatePost(ctx, user.ID, text)
	if err != nil {
		return models.Post{}, err
	}
	s.invalidate(ctx, user.ID)
	return post, nil
}

// ListPosts returns all posts of user in id order, from the cache when possible.
// Cache read failures fall back to the store; the listing is never failed by the cache.
func (s *PostService) ListPosts(ctx context.Context, user models.User) ([]models.Post, error) {
	key := utils.PostsCacheKey(user.ID)

	var cached []models.Post
	hit, err := utils.CacheGetJSON(ctx, s.cache, key, &cached)
	switch {
	case errors.Is(err, utils.ErrCacheCorrupt):
		s.log.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		if derr := s.cache.Delete(ctx, key); derr != nil {
			s.log.Warn("cache delete failed", zap.String("key", key), zap.Error(derr))
		}
	case err != nil:
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	case hit:
		if cached == nil {
			cached = []models.Post{}
		}
		return cached, nil
	}

	posts, err := s.posts.PostsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := utils.CacheSetJSON(ctx, s.cache, key, posts, s.ttl); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return posts, nil
}

// GetPost returns one post of user. Posts owned by someone else are NotFound.
func (s *PostService) GetPost(ctx context.Context, user models.User, postID uint) (models.Post, error) {
	return s.posts.PostByOwner(ctx, user.ID, postID)
}

// UpdatePost replaces the text of one of user's posts.
func (s *PostService) UpdatePost(ctx context.Context, user models.User, postID uint, text string) (models.Post, error) {
	text, err := s.cleanText(text)
	if err != nil {
		return models.Post{}, err
	}
	post, err := s.posts.UpdatePostText(ctx, user.ID, postID, text)
	if err != nil {
		return models.Post{}, err
	}
	s.invalidate(ctx, user.ID)
	return post, nil
}

// DeletePost removes one of user's posts, then drops the cached listing.
// The delete is reported as successful even when the cache cannot be reached.
func (s *PostService) DeletePost(ctx context.Context, user models.User, postID uint) error {
	if err := s.posts.DeletePost(ctx, user.ID, postID); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

// cleanText enforces the size limits on the text as sent, then sanitizes it.
func (s *PostService) cleanText(text string) (string, error) {
	switch {
	case len(text) > models.MaxPostBytes:
		return "", apperr.New(apperr.InvalidInput, "text exceeds 1000000 bytes")
	case !utf8.ValidString(text):
		return "", apperr.New(apperr.InvalidInput, "text must be valid UTF-8")
	}
	text = s.sanitizer.Sanitize(text)
	if len(text) == 0 {
		return "", apperr.New(apperr.InvalidInput, "text must not be empty")
	}
	return text, nil
}

// invalidate runs after a commit, so it must not depend on the request still being alive.
func (s *PostService) invalidate(ctx context.Context, userID uint) {
	key := utils.PostsCacheKey(userID)
	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// Package store is the durable source of truth for users and posts.
// Every mutation is a single atomic statement or transaction; callers rely on
// that instead of in-process locking.
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/models"
)

// Store persists users and posts through gorm.
type Store struct {
	db *gorm.DB
}

// New wraps an initialized gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models lists the records Store expects to be migrated.
func Models() []interface{} {
	return []interface{}{&models.User{}, &models.Post{}}
}

// CreateUser inserts a user. A duplicate email yields apperr.Conflict.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	user := models.User{Email: email, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return models.User{}, apperr.Wrap(apperr.Conflict, "email already registered", err)
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "create user", err)
	}
	return user, nil
}

// UserByEmail looks up a user by exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, lookupErr(err, "user not found", "query user by email")
}

// UserByID looks up a user by primary key.
func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, lookupErr(err, "user not found", "query user by id")
}

// DeleteUser removes a user and all of their posts. It is not exposed through
// the HTTP surface; operators use it and outstanding tokens stop resolving.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return nil
	})
	return mutationErr(err, "delete user")
}

// CreatePost inserts a post owned by ownerID.
func (s *Store) CreatePost(ctx context.Context, ownerID uint, text string) (models.Post, error) {
	post := models.Post{Text: text, OwnerID: ownerID}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return models.Post{}, apperr.Wrap(apperr.Internal, "create post", err)
	}
	return post, nil
}

// PostsByOwner returns every post of ownerID in insertion order. The result is
// never nil so an empty listing serializes as [] on every path.
func (s *Store) PostsByOwner(ctx context.Context, ownerID uint) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list posts", err)
	}
	return posts, nil
}

// PostByOwner returns the post only when ownerID owns it.
func (s *Store) PostByOwner(ctx context.Context, ownerID, postID uint) (models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", postID, ownerID).First(&post).Error
	return post, lookupErr(err, "post not found", "query post")
}

// UpdatePostText replaces the text of a post owned by ownerID.
func (s *Store) UpdatePostText(ctx context.Context, ownerID, postID uint, text string) (models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", postID, ownerID).First(&post).Error; err != nil {
			return err
		}
		// Affected rows are not checked: MySQL reports 0 when the text is unchanged.
		if err := tx.Model(&models.Post{}).Where("id = ? AND owner_id = ?", postID, ownerID).Update("text", text).Error; err != nil {
			return err
		}
		post.Text = text
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Post{}, apperr.New(apperr.NotFound, "post not found")
	}
	if err != nil {
		return models.Post{}, apperr.Wrap(apperr.Internal, "update post", err)
	}
	return post, nil
}

// DeletePost removes a post owned by ownerID with one conditional statement.
// Of several concurrent calls for the same post exactly one sees a deleted row;
// the rest get apperr.NotFound.
func (s *Store) DeletePost(ctx context.Context, ownerID, postID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", postID, ownerID).Delete(&models.Post{})
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "post not found")
	}
	return nil
}

func lookupErr(err error, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.NotFound, notFound)
	default:
		return apperr.Wrap(apperr.Internal, op, err)
	}
}

func mutationErr(err error, op string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	default:
		return apperr.Wrap(apperr.Internal, op, err)
	}
}

// isDuplicate recognises unique-index violations. Drivers without an error
// translator surface only their native message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "get sql.DB", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Wrap(apperr.Internal, "ping database", err)
	}
	return nil
}

// Counts returns the number of users and posts.
func (s *Store) Counts(ctx context.Context) (users, posts int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&models.User{}).Count(&users).Error; err != nil {
		return 0, 0, apperr.Wrap(apperr.Internal, "count users", err)
	}
	if err = db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		return 0, 0, apperr.Wrap(apperr.Internal, "count posts", err)
	}
	return users, posts, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/models"
	"github.com/cppla/quickpost/utils"
)

// MinPasswordLen is counted in characters, not bytes.
const MinPasswordLen = 6

const msgBadCredentials = "invalid email or password"

// AuthService signs users up, logs them in and resolves bearer tokens.
type AuthService struct {
	users    UserStore
	tokens   *utils.TokenService
	validate *validator.Validate
	log      *zap.Logger
}

// NewAuthService builds an AuthService. A nil logger discards output.
func NewAuthService(users UserStore, tokens *utils.TokenService, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
	}
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new user. A taken email fails with apperr.Conflict.
func (s *AuthService) Signup(ctx context.Context, email, password string) (models.User, error) {
	email = NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email,max=320"); err != nil {
		return models.User{}, apperr.Wrap(apperr.InvalidInput, "invalid email address", err)
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return models.User{}, apperr.New(apperr.InvalidInput, "password must be at least 6 characters")
	}

	_, err := s.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, apperr.New(apperr.Conflict, "email already registered")
	case !apperr.Is(err, apperr.NotFound):
		return models.User{}, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "hash password", err)
	}
	// The unique index still guards a concurrent signup that passed the check above.
	user, err := s.users.CreateUser(ctx, email, hash)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a token. Unknown email and wrong password
// fail identically; the cause is only visible in debug logs.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			s.log.Debug("login rejected", zap.String("reason", "unknown email"))
			return "", apperr.New(apperr.Unauthorized, msgBadCredentials)
		}
		return "", err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		s.log.Debug("login rejected", zap.String("reason", "password mismatch"), zap.Uint("user_id", user.ID))
		return "", apperr.New(apperr.Unauthorized, msgBadCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "issue token", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to a user that still exists. Bad or
// expired tokens and tokens for deleted users all fail with apperr.Unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperr.New(apperr.Unauthorized, "missing token")
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		msg := "invalid token"
		if apperr.Is(err, apperr.Expired) {
			msg = "token expired"
		}
		return models.User{}, apperr.Wrap(apperr.Unauthorized, msg, err)
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return models.User{}, apperr.Wrap(apperr.Unauthorized, "invalid token", err)
		}
		return models.User{}, err
	}
	return user, nil
}

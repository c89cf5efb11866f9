// Package auth implements registration, credential verification and session
// token issuance.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/apperr"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/config"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/crypto"
	jwtpkg "github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/jwt"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// dummyHash is compared against when login hits an unknown identifier, so the
// not-found path costs one bcrypt round like the wrong-password path.
var dummyHash = func() []byte {
	h, err := crypto.HashPassword("thinkflow-timing-pad")
	if err != nil {
		panic(err)
	}
	return h
}()

// Service handles identity workflows.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Credentials identifies an account by exactly one of email or username.
type Credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and mints its first session token. Username is
// checked before email so each conflict is reported accurately.
func (s Service) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(username) < 3 || len(username) > 30 {
		return nil, "", apperr.BadRequest("username must be between 3 and 30 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", apperr.BadRequest("please enter a valid email address")
	}
	if password == "" {
		return nil, "", apperr.BadRequest("password is required")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, "", apperr.BadRequest("username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", apperr.BadRequest("email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	user.UpdatedAt = user.CreatedAt
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a concurrent registration race past the two lookups; the
		// unique indexes still hold.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperr.BadRequest("username or email already exists")
		}
		return nil, "", err
	}

	token, err := jwtpkg.GenerateToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and mints a session token. Unknown identifier
// and wrong password produce the same error so accounts cannot be enumerated.
func (s Service) Login(ctx context.Context, creds Credentials) (*domain.User, string, error) {
	invalid := apperr.BadRequest("invalid credentials")

	var (
		user *domain.User
		err  error
	)
	switch {
	case creds.Email != "" && creds.Username != "":
		return nil, "", apperr.BadRequest("provide either email or username, not both")
	case creds.Email != "":
		user, err = s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	case creds.Username != "":
		user, err = s.users.GetUserByUsername(ctx, strings.TrimSpace(creds.Username))
	default:
		return nil, "", apperr.BadRequest("email or username is required")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = crypto.ComparePassword(dummyHash, creds.Password)
			return nil, "", invalid
		}
		return nil, "", err
	}

	if err := crypto.ComparePassword(user.PasswordHash, creds.Password); err != nil {
		return nil, "", invalid
	}

	token, err := jwtpkg.GenerateToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Authorize validates a bearer token and resolves the caller's user id. The
// user record is re-read on every call; sessions are stateless but an account
// must still exist in the store.
func (s Service) Authorize(ctx context.Context, token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", apperr.Unauthenticated("authentication required, please login or provide a valid token")
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		if jwtpkg.IsExpired(err) {
			return "", apperr.Unauthenticated("token has expired, please login again")
		}
		return "", apperr.Unauthenticated("invalid token, please login again")
	}
	if _, err := s.users.GetUserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.Unauthenticated("invalid token, please login again")
		}
		return "", err
	}
	return claims.UserID, nil
}

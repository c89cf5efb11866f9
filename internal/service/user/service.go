// Package user implements profile reads and credential-sensitive profile
// mutations for the authenticated account.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/apperr"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/crypto"
)

// Service handles profile workflows.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// ProfileUpdate carries the optional fields of an update request.
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile returns the caller's public view.
func (s Service) Profile(ctx context.Context, userID string) (domain.UserView, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserView{}, apperr.NotFound("user not found")
		}
		return domain.UserView{}, err
	}
	return u.PublicView(), nil
}

// UpdateProfile changes username and/or email, enforcing global uniqueness
// excluding the caller's own record.
func (s Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (domain.UserView, error) {
	update.Username = strings.TrimSpace(update.Username)
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))
	if update.Username == "" && update.Email == "" {
		return domain.UserView{}, apperr.BadRequest("at least one field (username or email) is required")
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserView{}, apperr.NotFound("user not found")
		}
		return domain.UserView{}, err
	}

	if update.Username != "" {
		existing, err := s.users.GetUserByUsername(ctx, update.Username)
		if err == nil && existing.ID != userID {
			return domain.UserView{}, apperr.BadRequest("username already exists")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.UserView{}, err
		}
		u.Username = update.Username
	}
	if update.Email != "" {
		existing, err := s.users.GetUserByEmail(ctx, update.Email)
		if err == nil && existing.ID != userID {
			return domain.UserView{}, apperr.BadRequest("email already exists")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.UserView{}, err
		}
		u.Email = update.Email
	}

	if err := s.users.UpdateUserProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.UserView{}, apperr.BadRequest("username or email already exists")
		}
		return domain.UserView{}, err
	}
	s.logger.Info("profile updated", "user_id", userID)
	return u.PublicView(), nil
}

// ChangePassword re-verifies the current password and stores a fresh hash.
func (s Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	if err := crypto.ComparePassword(u.PasswordHash, oldPassword); err != nil {
		return apperr.BadRequest("incorrect old password")
	}
	if oldPassword == newPassword {
		return apperr.BadRequest("new password must be different from old password")
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

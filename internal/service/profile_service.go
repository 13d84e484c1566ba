package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/utils"
)

// ProfileService manages the authenticated user's own account
type ProfileService interface {
	Get(ctx context.Context, userID int64) (*model.User, error)
	Update(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error
}

type profileInput struct {
	Username string `json:"username" validate:"omitempty,min=3"`
	Email    string `json:"email" validate:"omitempty,emailfmt"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,bcryptlen"`
}

type profileService struct {
	userRepo repository.UserRepository
	hasher   utils.PasswordHasher
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, hasher utils.PasswordHasher) ProfileService {
	return &profileService{userRepo: userRepo, hasher: hasher}
}

func (s *profileService) Get(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "failed to get user")
	}
	return user, nil
}

// Update changes username and/or email. Empty fields are left untouched.
func (s *profileService) Update(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	in := profileInput{
		Username: strings.TrimSpace(req.Username),
		Email:    normalizeEmail(req.Email),
	}
	if in.Username == "" && in.Email == "" {
		return nil, newValidationError("At least one field (username or email) is required")
	}
	if err := validateFirst(in); err != nil {
		return nil, err
	}

	var upd repository.UserUpdate
	if in.Username != "" {
		upd.Username = &in.Username
	}
	if in.Email != "" {
		upd.Email = &in.Email
	}
	user, err := s.userRepo.Update(ctx, userID, upd)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "failed to update profile")
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *profileService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	if err := validateFirst(changePasswordInput(req)); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound, "failed to get user")
	}
	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.SetPasswordHash(ctx, userID, hash); err != nil {
		return notFound(err, ErrUserNotFound, "failed to change password")
	}
	return nil
}

// notFound translates repository.ErrNotFound into sentinel and wraps anything else
func notFound(err, sentinel error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", msg, err)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/dcizov/t3-starter-template/internal/utils"
)

// settingsService implements SettingsService
type settingsService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewSettingsService creates a new settings service
func NewSettingsService(users repository.UserRepository, bcryptCost int) SettingsService {
	return &settingsService{users: users, bcryptCost: bcryptCost}
}

// UpdateSettings applies a partial profile update. The password change
// sub-flow validates the current password and the confirmation before any
// write; all changed fields land in one update.
func (s *settingsService) UpdateSettings(ctx context.Context, userID string, req *dto.UpdateSettingsRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFlowError(KindUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.CurrentPassword != "" || req.NewPassword != "" || req.ConfirmNewPassword != "" {
		hash, err := s.changePassword(req, user)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.FirstName != nil || req.LastName != nil {
		user.Name = fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	}
	if req.Email != nil {
		user.Email = utils.SanitizeEmail(*req.Email)
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.IsTwoFactorEnabled != nil {
		user.IsTwoFactorEnabled = *req.IsTwoFactorEnabled
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, WrapFlowError(KindConflict, err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user.Sanitized(), nil
}

func (s *settingsService) changePassword(req *dto.UpdateSettingsRequest, user *domain.User) (string, error) {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmNewPassword == "" {
		return "", WrapFlowError(KindInvalidPassword, errors.New("current, new and confirm passwords are all required"))
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return "", WrapFlowError(KindInvalidPassword, errors.New("current password is incorrect"))
	}

	if req.NewPassword != req.ConfirmNewPassword {
		return "", WrapFlowError(KindPasswordMismatch, errors.New("new password and confirm new password do not match"))
	}

	hash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hash, nil
}

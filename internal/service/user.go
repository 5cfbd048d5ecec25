package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCurrentPassword = errors.New("current password is incorrect")

type UserService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	fileService       *FileService
	emailService      *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	fileService *FileService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		fileService:       fileService,
		emailService:      emailService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

func (s *UserService) UpdatePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return ErrPasswordless
	}

	err = bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(currentPassword))
	if err != nil {
		return ErrInvalidCurrentPassword
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hashStr := string(hashedPassword)
	user.PasswordHash = &hashStr

	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// DeleteAccount removes stored attachments, notifies the user and deletes the
// account. Everything else owned by the user goes with ON DELETE CASCADE.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	name := ""
	profile, err := s.profileRepository.ByUserID(userID)
	if err != nil {
		slog.Warn("failed to get profile for deletion email", "user_id", userID, "error", err)
	} else {
		name = profile.Name
	}

	err = s.fileService.DeleteAllUserFilesFromStorage(ctx, userID)
	if err != nil {
		slog.Warn("failed to delete user files from storage", "user_id", userID, "error", err)
	}

	err = s.emailService.SendAccountDeletedEmail(user.Email, name)
	if err != nil {
		slog.Warn("failed to send account deleted email", "user_id", userID, "error", err)
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/utils"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]{1,62}[a-zA-Z0-9]$`)

const (
	minUsernameLength = 5
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 72 // предел bcrypt
)

type AuthService interface {
	Register(ctx context.Context, input models.Credentials) (*models.User, error)
	Login(ctx context.Context, input models.Credentials) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, input models.Credentials) (*models.User, error) {
	if !isValidUsername(input.Username) {
		return nil, ErrInvalidUsername
	}
	if !isValidPassword(input.Password) {
		return nil, ErrInvalidPassword
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input models.Credentials) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func isValidUsername(username string) bool {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

func isValidPassword(password string) bool {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return false
	}
	for _, r := range password {
		if r > 127 {
			return false
		}
	}
	return true
}

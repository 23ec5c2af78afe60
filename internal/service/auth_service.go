package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
	"github.com/Muntazir86/short-it/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Register(ctx context.Context, input *models.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, input *models.LoginInput) (*models.User, string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(ctx context.Context, input *models.RegisterInput) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	t, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, t, nil
}

// Login deliberately reports the same error for an unknown email and a
// wrong password.
func (s *authService) Login(ctx context.Context, input *models.LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	t, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, t, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository"
)

var (
	ErrUserEmailExists     = repository.ErrUserEmailExists
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAdminSignupDisabled = errors.New("admin accounts cannot be self-registered")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

type AuthService struct {
	repo             AuthUserRepository
	tokens           TokenIssuer
	allowAdminSignup bool
}

func NewAuthService(repo AuthUserRepository, tokens TokenIssuer, allowAdminSignup bool) *AuthService {
	return &AuthService{
		repo:             repo,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
	}
}

// Signup creates the account and returns it with a fresh access token.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, string, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.Role == domain.RoleAdmin && !s.allowAdminSignup {
		return domain.User{}, "", ErrAdminSignupDisabled
	}

	if err := s.checkEmailExists(ctx, user.Email); err != nil {
		return domain.User{}, "", err
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashPassword -> %w", err)
	}
	user.Password = hash

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.repo.Create -> %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.tokens.Issue -> %w", err)
	}

	return created, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}

		return domain.User{}, "", fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.tokens.Issue -> %w", err)
	}

	return user, token, nil
}

// EnsureAdmin creates an administrator account unless the email is already taken.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = NormalizeEmail(email)

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashPassword -> %w", err)
	}

	_, err = s.repo.Create(ctx, domain.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return false, nil
		}

		return false, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return true, nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

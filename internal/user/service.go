package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a customer account. Roles other than customer are only
// ever assigned directly in the database.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" || u.Password == "" {
		return User{}, apperror.Invalid([]apperror.Issue{{Field: "email", Message: "email and password are required"}})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	u.Password = string(hashed)
	u.Role = auth.RoleCustomer
	u.CreatedAt, u.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, apperror.OrPersistence(err)
	}
	return created, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, apperror.OrPersistence(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if u.Role == "" {
		u.Role = auth.RoleCustomer
	}
	return u, nil
}

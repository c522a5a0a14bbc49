package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so the
// response never reveals which one failed.
var ErrInvalidCredentials = errors.New("Invalid credentials")

type Session struct {
	User  inventory.User
	Token string
}

// Service is the auth gate: it issues and verifies identities. Core services
// never see it; authorization happens before their operations are invoked.
type Service struct {
	users  inventory.UserStore
	tokens *TokenManager
}

func NewService(users inventory.UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Signup(ctx context.Context, name, email, password string, role inventory.Role) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return Session{}, inventory.Invalid("Name, email, and password required")
	}
	if role == "" {
		role = inventory.RoleBuyer
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	u := inventory.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, inventory.Invalid("Email and password required")
	}

	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, inventory.ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

// EnsureAdmin seeds the admin account on startup when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		slog.Info("admin user already exists", slog.String("email", email))
		return nil
	} else if !errors.Is(err, inventory.ErrUserNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u := inventory.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         inventory.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		return err
	}
	slog.Info("admin user created", slog.String("email", email))
	return nil
}

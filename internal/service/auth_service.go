package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/pkg/auth"
	"github.com/staylane/bookings/pkg/config"
	"github.com/staylane/bookings/pkg/events"
	"github.com/staylane/bookings/pkg/logger"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	users    postgres.UserRepo
	eventBus events.EventBus
	cfg      *config.Config
}

func NewAuthService(users postgres.UserRepo, eventBus events.EventBus, cfg *config.Config) AuthService {
	return &authService{users: users, eventBus: eventBus, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user with this email already exists")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	event := events.UserRegisteredEvent{UserID: user.ID, Email: user.Email, At: time.Now()}
	if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	ttl := s.cfg.Auth.AccessTokenTTL
	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.cfg.Auth.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		User:      user,
	}, nil
}

func validateRegister(req *domain.RegisterRequest) error {
	switch {
	case req.Name == "":
		return errors.New("name is required")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return errors.New("valid email is required")
	case len(req.Password) < 8:
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

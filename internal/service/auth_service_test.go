package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/service"
	"github.com/staylane/bookings/pkg/auth"
	"github.com/staylane/bookings/pkg/config"
	"github.com/staylane/bookings/pkg/events"
)

func authConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMockUserRepo()
	bus := newMockEventBus()
	svc := service.NewAuthService(users, bus, authConfig())

	user, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name:     "Ada",
		Email:    "  Ada@Example.com ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if got := bus.count(events.UserRegistered); got != 1 {
		t.Errorf("user.registered events = %d, want 1", got)
	}

	res, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ADA@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := auth.Parse(res.Token, "test-secret")
	if err != nil {
		t.Fatalf("Parse issued token: %v", err)
	}
	if claims.Sub != user.ID {
		t.Errorf("token sub = %d, want %d", claims.Sub, user.ID)
	}
	// The hash never leaves the service through the login payload.
	payload, err := json.Marshal(res.User)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(payload), res.User.PasswordHash) {
		t.Errorf("password hash serialized: %s", payload)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMockUserRepo()
	users.add(domain.User{Email: "bea@example.com", Name: "Bea"})
	svc := service.NewAuthService(users, newMockEventBus(), authConfig())

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Bea", Email: "bea@example.com", Password: "long enough",
	})
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := service.NewAuthService(newMockUserRepo(), newMockEventBus(), authConfig())

	cases := []domain.RegisterRequest{
		{Name: "", Email: "a@b.com", Password: "long enough"},
		{Name: "A", Email: "not-an-email", Password: "long enough"},
		{Name: "A", Email: "a@b.com", Password: "short"},
	}
	for _, req := range cases {
		r := req
		if _, err := svc.Register(context.Background(), &r); err == nil {
			t.Errorf("Register(%+v) accepted invalid input", req)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newMockUserRepo()
	svc := service.NewAuthService(users, newMockEventBus(), authConfig())

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for name, req := range map[string]*domain.LoginRequest{
		"wrong password": {Email: "ada@example.com", Password: "battery staple"},
		"unknown email":  {Email: "nobody@example.com", Password: "correct horse"},
		"empty password": {Email: "ada@example.com", Password: ""},
	} {
		if _, err := svc.Login(context.Background(), req); !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
}

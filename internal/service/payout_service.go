package service

import (
	"context"
	"fmt"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/payments"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/pkg/logger"
)

// PayoutService covers the host side of Stripe Connect: express account
// onboarding, status, balance and payout settings.
type PayoutService interface {
	EnsureAccount(ctx context.Context, userID int64) (onboardingURL string, err error)
	AccountStatus(ctx context.Context, userID int64) (*payments.AccountStatus, error)
	Balance(ctx context.Context, userID int64) (*payments.Balance, error)
	SettingsLink(ctx context.Context, userID int64) (string, error)
}

type payoutService struct {
	users   postgres.UserRepo
	gateway payments.Gateway
}

func NewPayoutService(users postgres.UserRepo, gateway payments.Gateway) PayoutService {
	return &payoutService{users: users, gateway: gateway}
}

// EnsureAccount creates the user's express account if missing and hands
// back a fresh onboarding link either way.
func (s *payoutService) EnsureAccount(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", domain.ErrNotFound
	}

	accountID := ""
	if user.StripeAccountID != nil {
		accountID = *user.StripeAccountID
	}

	if accountID == "" {
		accountID, err = s.gateway.CreateAccount(ctx)
		if err != nil {
			return "", err
		}
		stored, err := s.users.SetStripeAccount(ctx, userID, accountID)
		if err != nil {
			return "", fmt.Errorf("failed to store payout account: %w", err)
		}
		if !stored {
			// A concurrent onboarding request won; use its account.
			fresh, err := s.users.FindByID(ctx, userID)
			if err != nil || fresh == nil || fresh.StripeAccountID == nil {
				return "", fmt.Errorf("failed to reload payout account: %w", err)
			}
			accountID = *fresh.StripeAccountID
		}
		logger.InfoContext(ctx, "Payout account created", "account_id", accountID)
	}

	return s.gateway.CreateOnboardingLink(ctx, accountID)
}

func (s *payoutService) AccountStatus(ctx context.Context, userID int64) (*payments.AccountStatus, error) {
	accountID, err := s.accountID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.gateway.AccountStatus(ctx, accountID)
}

func (s *payoutService) Balance(ctx context.Context, userID int64) (*payments.Balance, error) {
	accountID, err := s.accountID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.gateway.Balance(ctx, accountID)
}

func (s *payoutService) SettingsLink(ctx context.Context, userID int64) (string, error) {
	accountID, err := s.accountID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.gateway.CreateLoginLink(ctx, accountID)
}

func (s *payoutService) accountID(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", domain.ErrNotFound
	}
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		return "", domain.ErrNoPayoutAccount
	}
	return *user.StripeAccountID, nil
}

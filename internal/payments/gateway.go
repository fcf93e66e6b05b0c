package payments

import (
	"context"

	"github.com/staylane/bookings/internal/domain"
)

// CheckoutParams describes one checkout to be created at the gateway.
// Amounts are in the gateway's minor currency unit.
type CheckoutParams struct {
	ListingID   int64
	Title       string
	Amount      int64
	FeeAmount   int64
	Destination string
	SuccessURL  string
	CancelURL   string
}

// AccountStatus is the payout account state as reported by the gateway.
type AccountStatus struct {
	AccountID        string `json:"account_id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// Balance is a payout account balance in minor units per bucket.
type Balance struct {
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Currency  string `json:"currency"`
}

// Gateway is the payment-provider boundary. The core never infers payment
// success from anything but RetrieveCheckoutSession, and never does fee
// math beyond what it hands to CreateCheckoutSession.
type Gateway interface {
	CreateAccount(ctx context.Context) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
	CreateLoginLink(ctx context.Context, accountID string) (string, error)
	AccountStatus(ctx context.Context, accountID string) (*AccountStatus, error)
	Balance(ctx context.Context, accountID string) (*Balance, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*domain.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
}

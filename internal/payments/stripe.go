package payments

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/staylane/bookings/internal/domain"
)

// payoutDelayDays is applied to every connected account so funds settle
// after the guest's stay has started.
const payoutDelayDays = 7

// StripeGateway implements Gateway against Stripe Connect. It is handed
// to services as a dependency; nothing in this package is a process-wide
// singleton.
type StripeGateway struct {
	api *client.API

	// onboardingURL is where Stripe sends the user back after (or to
	// restart) express onboarding.
	onboardingURL string
}

func NewStripeGateway(secretKey, onboardingURL string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, onboardingURL: onboardingURL}
}

func (g *StripeGateway) CreateAccount(ctx context.Context) (string, error) {
	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
	}
	params.Context = ctx
	acct, err := g.api.Accounts.New(params)
	if err != nil {
		return "", &domain.GatewayError{Op: "create account", Err: err}
	}
	return acct.ID, nil
}

func (g *StripeGateway) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(g.onboardingURL),
		ReturnURL:  stripe.String(g.onboardingURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", &domain.GatewayError{Op: "create onboarding link", Err: err}
	}
	return link.URL, nil
}

func (g *StripeGateway) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.LoginLinkParams{Account: stripe.String(accountID)}
	params.Context = ctx
	link, err := g.api.LoginLinks.New(params)
	if err != nil {
		return "", &domain.GatewayError{Op: "create login link", Err: err}
	}
	return link.URL, nil
}

func (g *StripeGateway) AccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	params := &stripe.AccountParams{
		Settings: &stripe.AccountSettingsParams{
			Payouts: &stripe.AccountSettingsPayoutsParams{
				Schedule: &stripe.AccountSettingsPayoutsScheduleParams{
					DelayDays: stripe.Int64(payoutDelayDays),
				},
			},
		},
	}
	params.Context = ctx
	acct, err := g.api.Accounts.Update(accountID, params)
	if err != nil {
		return nil, &domain.GatewayError{Op: "account status", Err: err}
	}
	return &AccountStatus{
		AccountID:        acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}

func (g *StripeGateway) Balance(ctx context.Context, accountID string) (*Balance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	bal, err := g.api.Balance.Get(params)
	if err != nil {
		return nil, &domain.GatewayError{Op: "balance", Err: err}
	}
	out := &Balance{Currency: string(stripe.CurrencyUSD)}
	for _, a := range bal.Available {
		out.Available += a.Amount
		out.Currency = string(a.Currency)
	}
	for _, p := range bal.Pending {
		out.Pending += p.Amount
	}
	return out, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(p.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.FeeAmount),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.Destination),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, &domain.GatewayError{Op: "create checkout session", Err: err}
	}
	return toSession(sess, p), nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, &domain.GatewayError{Op: "retrieve checkout session", Err: err}
	}
	return toSession(sess, CheckoutParams{}), nil
}

func toSession(s *stripe.CheckoutSession, p CheckoutParams) *domain.CheckoutSession {
	status := string(s.PaymentStatus)
	if s.Status == stripe.CheckoutSessionStatusExpired {
		status = domain.StatusExpired
	}
	out := &domain.CheckoutSession{
		ID:             s.ID,
		ListingID:      p.ListingID,
		PaymentStatus:  status,
		AmountTotal:    s.AmountTotal,
		ApplicationFee: p.FeeAmount,
		Destination:    p.Destination,
		URL:            s.URL,
		CreatedAt:      time.Unix(s.Created, 0).UTC(),
	}
	return out
}

var _ Gateway = (*StripeGateway)(nil)

package service

import (
	"context"
	"fmt"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/payments"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/pkg/config"
	"github.com/staylane/bookings/pkg/events"
	"github.com/staylane/bookings/pkg/logger"
)

type BookingService interface {
	// CreateSession opens a checkout at the gateway for (user, listing)
	// and stores it as the user's single pending session, replacing
	// whatever was there.
	CreateSession(ctx context.Context, userID, listingID int64) (*domain.CheckoutSession, error)

	// Confirm materializes the user's pending session into an order. It
	// re-fetches payment status from the gateway and is safe to call
	// concurrently or repeatedly: at most one order ever exists per
	// session, and duplicates resolve to the existing order.
	Confirm(ctx context.Context, userID int64) (*domain.Order, error)

	ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	AlreadyBooked(ctx context.Context, userID, listingID int64) (bool, error)
}

type bookingService struct {
	listings postgres.ListingRepo
	users    postgres.UserRepo
	orders   postgres.OrderRepo
	gateway  payments.Gateway
	eventBus events.EventBus
	cfg      *config.Config
}

func NewBookingService(
	listings postgres.ListingRepo,
	users postgres.UserRepo,
	orders postgres.OrderRepo,
	gateway payments.Gateway,
	eventBus events.EventBus,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		listings: listings,
		users:    users,
		orders:   orders,
		gateway:  gateway,
		eventBus: eventBus,
		cfg:      cfg,
	}
}

func (s *bookingService) CreateSession(ctx context.Context, userID, listingID int64) (*domain.CheckoutSession, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		return nil, domain.ErrNotFound
	}

	owner, err := s.users.FindByID(ctx, listing.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing owner: %w", err)
	}
	if owner == nil || owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
		return nil, domain.ErrNoPayoutAccount
	}

	// Price is whole currency units; the gateway wants minor units. The
	// platform fee is FeePercent of the price, also in minor units.
	amount := listing.Price * 100
	fee := listing.Price * s.cfg.Stripe.FeePercent

	sess, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		ListingID:   listing.ID,
		Title:       listing.Title,
		Amount:      amount,
		FeeAmount:   fee,
		Destination: *owner.StripeAccountID,
		SuccessURL:  fmt.Sprintf("%s/%d", s.cfg.Stripe.SuccessURL, listing.ID),
		CancelURL:   s.cfg.Stripe.CancelURL,
	})
	if err != nil {
		// Propagated as a single failed attempt; the caller may simply
		// call again, which overwrites the slot.
		return nil, err
	}

	if err := s.users.SetPendingSession(ctx, userID, sess); err != nil {
		return nil, fmt.Errorf("failed to store pending session: %w", err)
	}

	logger.InfoContext(ctx, "Checkout session created",
		"session_id", sess.ID, "listing_id", listing.ID, "amount", amount, "fee", fee)

	return sess, nil
}

func (s *bookingService) Confirm(ctx context.Context, userID int64) (*domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	pending := user.PendingSession
	if pending == nil {
		return nil, domain.ErrNoPendingSession
	}

	// Only the gateway's answer counts for payment status; anything the
	// client sent along with this request is ignored.
	fresh, err := s.gateway.RetrieveCheckoutSession(ctx, pending.ID)
	if err != nil {
		return nil, err
	}

	if fresh.PaymentStatus != domain.StatusPaid {
		// Leave the slot intact so a later legitimate confirmation of
		// this same session can still succeed.
		return nil, domain.ErrPaymentNotCompleted
	}

	snapshot := *pending
	snapshot.PaymentStatus = fresh.PaymentStatus
	snapshot.AmountTotal = fresh.AmountTotal

	order, created, err := s.orders.CreateOnce(ctx, &domain.Order{
		ListingID: pending.ListingID,
		SessionID: pending.ID,
		Session:   snapshot,
		OrderedBy: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize order: %w", err)
	}

	// Clear the slot only while it still holds this session; a newer
	// checkout started meanwhile must survive. A failed clear is logged,
	// not fatal: the order exists and re-confirming is idempotent.
	if err := s.users.ClearPendingSession(ctx, userID, pending.ID); err != nil {
		logger.ErrorContext(ctx, "Failed to clear pending session", "error", err, "session_id", pending.ID)
	}

	if created {
		title := ""
		if listing, err := s.listings.GetByID(ctx, order.ListingID); err == nil && listing != nil {
			title = listing.Title
		}
		event := events.OrderCreatedEvent{
			OrderID:      order.ID,
			ListingID:    order.ListingID,
			ListingTitle: title,
			SessionID:    order.SessionID,
			OrderedBy:    order.OrderedBy,
			GuestEmail:   user.Email,
			GuestName:    user.Name,
			AmountTotal:  order.Session.AmountTotal,
			CreatedAt:    order.CreatedAt,
		}
		if err := s.eventBus.Publish(ctx, events.OrderCreated, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish order created event", "error", err, "order_id", order.ID)
		}
		logger.InfoContext(ctx, "Order materialized", "order_id", order.ID, "session_id", order.SessionID)
	} else {
		logger.InfoContext(ctx, "Duplicate confirmation resolved to existing order",
			"order_id", order.ID, "session_id", order.SessionID)
	}

	return order, nil
}

func (s *bookingService) ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

func (s *bookingService) AlreadyBooked(ctx context.Context, userID, listingID int64) (bool, error) {
	return s.orders.ExistsForListingAndUser(ctx, listingID, userID)
}

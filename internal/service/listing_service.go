package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/pkg/events"
	"github.com/staylane/bookings/pkg/logger"
)

type ListingService interface {
	Create(ctx context.Context, ownerID int64, req *domain.ListingCreateReq) (*domain.Listing, error)
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, limit int) ([]domain.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error)
	Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error)
	Update(ctx context.Context, actorID, id int64, patch domain.ListingPatch) (*domain.Listing, error)
	Delete(ctx context.Context, actorID, id int64) (*domain.Listing, error)
	GetImage(ctx context.Context, id int64) (*domain.ListingImage, error)
	SetImage(ctx context.Context, actorID, id int64, img *domain.ListingImage) error
}

type listingService struct {
	listings postgres.ListingRepo
	eventBus events.EventBus
}

func NewListingService(listings postgres.ListingRepo, eventBus events.EventBus) ListingService {
	return &listingService{listings: listings, eventBus: eventBus}
}

func (s *listingService) Create(ctx context.Context, ownerID int64, req *domain.ListingCreateReq) (*domain.Listing, error) {
	if err := validateListing(req); err != nil {
		return nil, err
	}

	l, err := s.listings.Create(ctx, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.publish(ctx, events.ListingCreated, l)
	return l, nil
}

func (s *listingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (s *listingService) List(ctx context.Context, limit int) ([]domain.Listing, error) {
	return s.listings.List(ctx, limit)
}

func (s *listingService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	return s.listings.ListByOwner(ctx, ownerID)
}

func (s *listingService) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error) {
	return s.listings.Search(ctx, c)
}

func (s *listingService) Update(ctx context.Context, actorID, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("empty update")
	}

	l, err := s.listings.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}

	s.publish(ctx, events.ListingUpdated, l)
	return l, nil
}

func (s *listingService) Delete(ctx context.Context, actorID, id int64) (*domain.Listing, error) {
	l, err := s.authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.listings.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete listing: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	s.publish(ctx, events.ListingDeleted, l)
	return l, nil
}

func (s *listingService) GetImage(ctx context.Context, id int64) (*domain.ListingImage, error) {
	img, err := s.listings.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, domain.ErrNotFound
	}
	return img, nil
}

func (s *listingService) SetImage(ctx context.Context, actorID, id int64, img *domain.ListingImage) error {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return err
	}
	if len(img.Data) == 0 {
		return fmt.Errorf("empty image")
	}
	return s.listings.SetImage(ctx, id, img)
}

// authorize resolves whether the actor may mutate the listing. Only the
// owning user ever may; the mutation itself stays with the caller.
func (s *listingService) authorize(ctx context.Context, actorID, listingID int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.OwnerID != actorID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func (s *listingService) publish(ctx context.Context, subject string, l *domain.Listing) {
	event := events.ListingEvent{
		ListingID: l.ID,
		OwnerID:   l.OwnerID,
		Title:     l.Title,
		Location:  l.Location,
		At:        time.Now(),
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish listing event", "error", err, "subject", subject, "listing_id", l.ID)
	}
}

func validateListing(req *domain.ListingCreateReq) error {
	switch {
	case req.Title == "":
		return errors.New("title is required")
	case req.Location == "":
		return errors.New("location is required")
	case req.Price <= 0:
		return errors.New("price must be positive")
	case req.Beds <= 0:
		return errors.New("beds must be positive")
	case req.AvailableFrom.IsZero() || req.AvailableTo.IsZero():
		return errors.New("availability window is required")
	case req.AvailableTo.Before(req.AvailableFrom):
		return errors.New("available_to must not precede available_from")
	}
	return nil
}

package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/payments"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/pkg/events"
)

// ---------- Mocks ----------

type mockListingRepo struct {
	mu       sync.Mutex
	nextID   int64
	listings map[int64]*domain.Listing
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{nextID: 1, listings: make(map[int64]*domain.Listing)}
}

func (m *mockListingRepo) add(l domain.Listing) *domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.nextID
	m.nextID++
	m.listings[l.ID] = &l
	return &l
}

func (m *mockListingRepo) Create(_ context.Context, ownerID int64, in *domain.ListingCreateReq) (*domain.Listing, error) {
	return m.add(domain.Listing{
		OwnerID:       ownerID,
		Title:         in.Title,
		Content:       in.Content,
		Location:      in.Location,
		Price:         in.Price,
		AvailableFrom: in.AvailableFrom,
		AvailableTo:   in.AvailableTo,
		Beds:          in.Beds,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}), nil
}

func (m *mockListingRepo) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *mockListingRepo) List(_ context.Context, _ int) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Listing
	for _, l := range m.listings {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockListingRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Listing
	for _, l := range m.listings {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) Search(_ context.Context, c domain.SearchCriteria) ([]domain.Listing, error) {
	c.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Listing
	for _, l := range m.listings {
		if c.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(c.Location)) {
			continue
		}
		if c.From != nil && l.AvailableFrom.Before(*c.From) {
			continue
		}
		if c.To != nil && l.AvailableTo.After(*c.To) {
			continue
		}
		if c.Beds != nil && l.Beds != *c.Beds {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockListingRepo) Update(_ context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Content != nil {
		l.Content = *patch.Content
	}
	if patch.Location != nil {
		l.Location = *patch.Location
	}
	if patch.Price != nil {
		l.Price = *patch.Price
	}
	if patch.AvailableFrom != nil {
		l.AvailableFrom = *patch.AvailableFrom
	}
	if patch.AvailableTo != nil {
		l.AvailableTo = *patch.AvailableTo
	}
	if patch.Beds != nil {
		l.Beds = *patch.Beds
	}
	cp := *l
	return &cp, nil
}

func (m *mockListingRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.listings[id]
	delete(m.listings, id)
	return ok, nil
}

func (m *mockListingRepo) GetImage(_ context.Context, _ int64) (*domain.ListingImage, error) {
	return nil, nil
}

func (m *mockListingRepo) SetImage(_ context.Context, _ int64, _ *domain.ListingImage) error {
	return nil
}

type mockUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) add(u domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID
	m.nextID++
	if u.Role == "" {
		u.Role = "user"
	}
	m.users[u.ID] = &u
	return &u
}

func (m *mockUserRepo) Create(_ context.Context, email, hash, name string) (*domain.User, error) {
	return m.add(domain.User{Email: email, PasswordHash: hash, Name: name}), nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	if u.PendingSession != nil {
		s := *u.PendingSession
		cp.PendingSession = &s
	}
	return &cp, nil
}

func (m *mockUserRepo) SetStripeAccount(_ context.Context, userID int64, accountID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.StripeAccountID != nil {
		return false, nil
	}
	u.StripeAccountID = &accountID
	return true, nil
}

func (m *mockUserRepo) SetPendingSession(_ context.Context, userID int64, s *domain.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	cp := *s
	u.PendingSession = &cp
	return nil
}

func (m *mockUserRepo) ClearPendingSession(_ context.Context, userID int64, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if ok && u.PendingSession != nil && u.PendingSession.ID == sessionID {
		u.PendingSession = nil
	}
	return nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[string]*domain.Order // keyed by session id
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{nextID: 1, orders: make(map[string]*domain.Order)}
}

// CreateOnce mirrors the unique-constraint insert: under one lock, the
// first caller for a session id wins and later callers get the winner.
func (m *mockOrderRepo) CreateOnce(_ context.Context, o *domain.Order) (*domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.orders[o.SessionID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *o
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Now()
	m.orders[o.SessionID] = &cp
	out := cp
	return &out, true, nil
}

func (m *mockOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.OrderedBy == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ExistsForListingAndUser(_ context.Context, listingID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ListingID == listingID && o.OrderedBy == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type mockGateway struct {
	mu       sync.Mutex
	nextID   int
	statuses map[string]string // session id -> payment status

	createErr   error
	retrieveErr error

	// retrieveBarrier, when set, holds every RetrieveCheckoutSession
	// call until all expected callers have arrived.
	retrieveBarrier *sync.WaitGroup
}

func newMockGateway() *mockGateway {
	return &mockGateway{nextID: 1, statuses: make(map[string]string)}
}

func (g *mockGateway) CreateAccount(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("acct_%d", g.nextID)
	g.nextID++
	return id, nil
}

func (g *mockGateway) CreateOnboardingLink(_ context.Context, accountID string) (string, error) {
	return "https://connect.example/onboard/" + accountID, nil
}

func (g *mockGateway) CreateLoginLink(_ context.Context, accountID string) (string, error) {
	return "https://connect.example/login/" + accountID, nil
}

func (g *mockGateway) AccountStatus(_ context.Context, accountID string) (*payments.AccountStatus, error) {
	return &payments.AccountStatus{AccountID: accountID, ChargesEnabled: true, PayoutsEnabled: true, DetailsSubmitted: true}, nil
}

func (g *mockGateway) Balance(context.Context, string) (*payments.Balance, error) {
	return &payments.Balance{Available: 1000, Currency: "usd"}, nil
}

func (g *mockGateway) CreateCheckoutSession(_ context.Context, p payments.CheckoutParams) (*domain.CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("cs_%d", g.nextID)
	g.nextID++
	g.statuses[id] = domain.StatusUnpaid
	return &domain.CheckoutSession{
		ID:             id,
		ListingID:      p.ListingID,
		PaymentStatus:  domain.StatusUnpaid,
		AmountTotal:    p.Amount,
		ApplicationFee: p.FeeAmount,
		Destination:    p.Destination,
		CreatedAt:      time.Now(),
	}, nil
}

func (g *mockGateway) RetrieveCheckoutSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	if g.retrieveBarrier != nil {
		g.retrieveBarrier.Done()
		g.retrieveBarrier.Wait()
	}
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.statuses[id]
	if !ok {
		return nil, &domain.GatewayError{Op: "retrieve checkout session", Err: fmt.Errorf("unknown session %s", id)}
	}
	return &domain.CheckoutSession{ID: id, PaymentStatus: status}, nil
}

func (g *mockGateway) setStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[id] = status
}

type mockEventBus struct {
	mu        sync.Mutex
	published map[string]int
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{published: make(map[string]int)}
}

func (b *mockEventBus) Publish(_ context.Context, subject string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[subject]++
	return nil
}

func (b *mockEventBus) Subscribe(string, func(*events.Message)) error                { return nil }
func (b *mockEventBus) QueueSubscribe(string, string, func(*events.Message)) error   { return nil }
func (b *mockEventBus) Close() error                                                 { return nil }

func (b *mockEventBus) count(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published[subject]
}

var (
	_ postgres.ListingRepo = (*mockListingRepo)(nil)
	_ postgres.UserRepo    = (*mockUserRepo)(nil)
	_ postgres.OrderRepo   = (*mockOrderRepo)(nil)
	_ payments.Gateway     = (*mockGateway)(nil)
	_ events.EventBus      = (*mockEventBus)(nil)
)

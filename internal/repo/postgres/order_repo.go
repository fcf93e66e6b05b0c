package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staylane/bookings/internal/domain"
)

type OrderRepo interface {
	// CreateOnce inserts the order unless one already exists for the same
	// session id. It reports whether this call won the insert. The orders
	// table carries a unique constraint on session_id, so concurrent
	// confirmations for one session race at the database, not here.
	CreateOnce(ctx context.Context, o *domain.Order) (*domain.Order, bool, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	ExistsForListingAndUser(ctx context.Context, listingID, userID int64) (bool, error)
}

type OrderRepoImpl struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepoImpl { return &OrderRepoImpl{pool: pool} }

const orderCols = `id, listing_id, session_id, session, ordered_by, created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var session []byte
	err := row.Scan(&o.ID, &o.ListingID, &o.SessionID, &session, &o.OrderedBy, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(session, &o.Session); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepoImpl) CreateOnce(ctx context.Context, o *domain.Order) (*domain.Order, bool, error) {
	payload, err := json.Marshal(o.Session)
	if err != nil {
		return nil, false, err
	}

	const q = `INSERT INTO orders (listing_id, session_id, session, ordered_by)
VALUES ($1,$2,$3,$4)
ON CONFLICT (session_id) DO NOTHING
RETURNING ` + orderCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	created, err := scanOrder(r.pool.QueryRow(ctx, q, o.ListingID, o.SessionID, payload, o.OrderedBy))
	if err == pgx.ErrNoRows {
		// Lost the race; some earlier confirmation materialized this session.
		existing, err := r.GetBySessionID(ctx, o.SessionID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *OrderRepoImpl) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE session_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o, err := scanOrder(r.pool.QueryRow(ctx, q, sessionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *OrderRepoImpl) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + orderCols + ` FROM orders WHERE ordered_by=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	os := make([]domain.Order, 0, limit)
	for rows.Next() {
		var o domain.Order
		var session []byte
		if err := rows.Scan(&o.ID, &o.ListingID, &o.SessionID, &session, &o.OrderedBy, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(session, &o.Session); err != nil {
			return nil, err
		}
		os = append(os, o)
	}
	return os, rows.Err()
}

func (r *OrderRepoImpl) ExistsForListingAndUser(ctx context.Context, listingID, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM orders WHERE listing_id=$1 AND ordered_by=$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, listingID, userID).Scan(&exists)
	return exists, err
}

var _ OrderRepo = (*OrderRepoImpl)(nil)

package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staylane/bookings/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, email, hash, name string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// SetStripeAccount records the payout account once; it reports false
	// when the user already has one.
	SetStripeAccount(ctx context.Context, userID int64, accountID string) (bool, error)
	// SetPendingSession unconditionally replaces the user's pending
	// checkout slot with the given snapshot.
	SetPendingSession(ctx context.Context, userID int64, s *domain.CheckoutSession) error
	// ClearPendingSession empties the slot only while it still holds the
	// given session id, so a newer checkout is never clobbered.
	ClearPendingSession(ctx context.Context, userID int64, sessionID string) error
}

type UserRepoImpl struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *UserRepoImpl { return &UserRepoImpl{pool: pool} }

const userCols = `id, role, email, name, password_hash, stripe_account_id, pending_session, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var pending []byte
	err := row.Scan(
		&u.ID, &u.Role, &u.Email, &u.Name, &u.PasswordHash,
		&u.StripeAccountID, &pending, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		var s domain.CheckoutSession
		if err := json.Unmarshal(pending, &s); err != nil {
			return nil, err
		}
		u.PendingSession = &s
	}
	return &u, nil
}

func (r *UserRepoImpl) Create(ctx context.Context, email, hash, name string) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, name)
VALUES ($1,$2,$3)
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, email, hash, name))
}

func (r *UserRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *UserRepoImpl) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *UserRepoImpl) SetStripeAccount(ctx context.Context, userID int64, accountID string) (bool, error) {
	const q = `UPDATE users SET stripe_account_id=$2, updated_at=now()
WHERE id=$1 AND stripe_account_id IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, userID, accountID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *UserRepoImpl) SetPendingSession(ctx context.Context, userID int64, s *domain.CheckoutSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET pending_session=$2, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, userID, payload)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepoImpl) ClearPendingSession(ctx context.Context, userID int64, sessionID string) error {
	const q = `UPDATE users SET pending_session=NULL, updated_at=now()
WHERE id=$1 AND pending_session->>'id' = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, sessionID)
	return err
}

var _ UserRepo = (*UserRepoImpl)(nil)

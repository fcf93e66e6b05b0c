package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staylane/bookings/internal/domain"
)

type ListingRepo interface {
	Create(ctx context.Context, ownerID int64, in *domain.ListingCreateReq) (*domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, limit int) ([]domain.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error)
	Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error)
	Update(ctx context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetImage(ctx context.Context, id int64) (*domain.ListingImage, error)
	SetImage(ctx context.Context, id int64, img *domain.ListingImage) error
}

type ListingRepoImpl struct{ pool *pgxpool.Pool }

func NewListingRepo(pool *pgxpool.Pool) *ListingRepoImpl { return &ListingRepoImpl{pool: pool} }

// image and image_content_type are never part of this projection; the
// blob is only reachable through GetImage.
const listingCols = `id, owner_id, title, content, location, price,
available_from, available_to, beds, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Content, &l.Location, &l.Price,
		&l.AvailableFrom, &l.AvailableTo, &l.Beds, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepoImpl) Create(ctx context.Context, ownerID int64, in *domain.ListingCreateReq) (*domain.Listing, error) {
	const q = `INSERT INTO listings (
    owner_id, title, content, location, price, available_from, available_to, beds
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  RETURNING ` + listingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanListing(r.pool.QueryRow(ctx, q, ownerID,
		in.Title, in.Content, in.Location, in.Price,
		in.AvailableFrom, in.AvailableTo, in.Beds,
	))
}

func (r *ListingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	l, err := scanListing(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *ListingRepoImpl) List(ctx context.Context, limit int) ([]domain.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	const q = `SELECT ` + listingCols + ` FROM listings ORDER BY created_at DESC LIMIT $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows, limit)
}

func (r *ListingRepoImpl) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE owner_id=$1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows, 0)
}

func (r *ListingRepoImpl) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error) {
	where, args := buildSearchWhere(c)
	q := `SELECT ` + listingCols + ` FROM listings` + where + ` ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows, 0)
}

func (r *ListingRepoImpl) Update(ctx context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	set, args := buildListingSet(patch)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	q := `UPDATE listings SET ` + set + ` WHERE id=$1 RETURNING ` + listingCols
	args = append([]any{id}, args...)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	l, err := scanListing(r.pool.QueryRow(ctx, q, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *ListingRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM listings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ListingRepoImpl) GetImage(ctx context.Context, id int64) (*domain.ListingImage, error) {
	const q = `SELECT image, image_content_type FROM listings WHERE id=$1 AND image IS NOT NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var img domain.ListingImage
	err := r.pool.QueryRow(ctx, q, id).Scan(&img.Data, &img.ContentType)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ListingRepoImpl) SetImage(ctx context.Context, id int64, img *domain.ListingImage) error {
	const q = `UPDATE listings SET image=$2, image_content_type=$3, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, img.Data, img.ContentType)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectListings(rows pgx.Rows, sizeHint int) ([]domain.Listing, error) {
	ls := make([]domain.Listing, 0, sizeHint)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Content, &l.Location, &l.Price,
			&l.AvailableFrom, &l.AvailableTo, &l.Beds, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ls = append(ls, l)
	}
	return ls, rows.Err()
}

var _ ListingRepo = (*ListingRepoImpl)(nil)

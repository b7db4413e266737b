package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/unihouse/api/internal/model"
)

// PostgresListingRepo はPostgreSQLを使用した掲示リポジトリ。
type PostgresListingRepo struct {
	db *sql.DB
}

// NewPostgresListingRepo はPostgresListingRepoを生成する。
func NewPostgresListingRepo(db *sql.DB) *PostgresListingRepo {
	return &PostgresListingRepo{db: db}
}

// FindByID は指定IDの掲示を取得する。見つからない場合はnilを返す。
func (r *PostgresListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	listing := &model.Listing{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, title, campus, rent, deposit, gender, description,
		        image_url, amenities, distance, posted_at, created_at
		 FROM listings WHERE id = $1`,
		id,
	).Scan(
		&listing.ID, &listing.AuthorID, &listing.Title, &listing.Campus,
		&listing.Rent, &listing.Deposit, &listing.Gender, &listing.Description,
		&listing.ImageURL, pq.Array(&listing.Amenities), &listing.Distance,
		&listing.PostedAt, &listing.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return listing, nil
}

// ListAll は全掲示を新着順で返す。
func (r *PostgresListingRepo) ListAll(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author_id, title, campus, rent, deposit, gender, description,
		        image_url, amenities, distance, posted_at, created_at
		 FROM listings
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ID, &l.AuthorID, &l.Title, &l.Campus,
			&l.Rent, &l.Deposit, &l.Gender, &l.Description,
			&l.ImageURL, pq.Array(&l.Amenities), &l.Distance,
			&l.PostedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// Create は掲示を作成する。
func (r *PostgresListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (id, author_id, title, campus, rent, deposit, gender,
		                       description, image_url, amenities, distance, posted_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		listing.ID, listing.AuthorID, listing.Title, listing.Campus,
		listing.Rent, listing.Deposit, listing.Gender, listing.Description,
		listing.ImageURL, pq.Array(listing.Amenities), listing.Distance,
		listing.PostedAt, listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ListingRepository = (*PostgresListingRepo)(nil)

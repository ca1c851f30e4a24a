package shortener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// Repository defines methods for URL persistence
type Repository interface {
	Create(ctx context.Context, url *ShortURL) error
	GetActiveByCode(ctx context.Context, code string) (*ShortURL, error)
	Exists(ctx context.Context, code string) (bool, error)
	IncrementClickCount(ctx context.Context, code string) error
	List(ctx context.Context, skip, limit int) ([]*ShortURL, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Create inserts a new short URL. The unique constraint on short_code is
// the final arbiter under concurrent creation; a violation surfaces as
// ErrCodeTaken rather than a generic failure.
func (r *postgresRepository) Create(ctx context.Context, url *ShortURL) error {
	query := `
        INSERT INTO urls (original_url, short_code, creator_ip)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, click_count, is_active`

	err := r.db.QueryRowxContext(ctx, query,
		url.OriginalURL,
		url.ShortCode,
		url.CreatorIP,
	).Scan(&url.ID, &url.CreatedAt, &url.ClickCount, &url.IsActive)

	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("creating short URL: %w", err)
	}
	return nil
}

// GetActiveByCode returns the record only if it exists and is active.
// Inactive and absent codes are indistinguishable to the caller.
func (r *postgresRepository) GetActiveByCode(ctx context.Context, code string) (*ShortURL, error) {
	url := new(ShortURL)
	err := r.db.GetContext(ctx, url,
		"SELECT * FROM urls WHERE short_code = $1 AND is_active = true", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting URL by short code: %w", err)
	}
	return url, nil
}

// Exists reports whether a code is taken by any record, active or not.
// Codes are never reused, so soft-deleted records still count.
func (r *postgresRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1)", code)
	if err != nil {
		return false, fmt.Errorf("checking short code existence: %w", err)
	}
	return exists, nil
}

// IncrementClickCount atomically bumps click_count by one. A missing code
// is a silent no-op: the record may have been deactivated between the
// redirect lookup and this call.
func (r *postgresRepository) IncrementClickCount(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1", code)
	if err != nil {
		return fmt.Errorf("incrementing click count: %w", err)
	}
	return nil
}

// List returns URLs ordered by creation, paginated by offset and limit
func (r *postgresRepository) List(ctx context.Context, skip, limit int) ([]*ShortURL, error) {
	urls := []*ShortURL{}
	err := r.db.SelectContext(ctx, &urls,
		"SELECT * FROM urls ORDER BY id LIMIT $1 OFFSET $2", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("listing URLs: %w", err)
	}
	return urls, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Muntazir86/short-it/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrURLNotFound = errors.New("url not found")
	ErrCodeExists  = errors.New("short code already exists")
)

// Columns that ListByUser accepts for sorting. Anything else falls
// back to created_at to keep user input out of the SQL text.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"clicks":     "clicks",
	"short_code": "short_code",
}

type URLRepository interface {
	Create(ctx context.Context, url *models.URL) error
	GetByShortCode(ctx context.Context, code string) (*models.URL, error)
	GetByID(ctx context.Context, id string) (*models.URL, error)
	ExistsByShortCode(ctx context.Context, code string) (bool, error)
	ListByUser(ctx context.Context, input models.ListURLsInput) ([]models.URL, int64, error)
	Update(ctx context.Context, url *models.URL) error
	Delete(ctx context.Context, id string) error
	IncrementClicks(ctx context.Context, id string) error
}

type urlRepository struct {
	db *PostgresDB
}

func NewURLRepository(db *PostgresDB) URLRepository {
	return &urlRepository{db: db}
}

func (r *urlRepository) Create(ctx context.Context, url *models.URL) error {
	query := `
		INSERT INTO urls (user_id, original_url, short_code, is_private, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, clicks, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		url.UserID,
		url.OriginalURL,
		url.ShortCode,
		url.IsPrivate,
		url.ExpiresAt,
	).Scan(&url.ID, &url.Clicks, &url.CreatedAt, &url.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create url: %w", err)
	}

	return nil
}

func (r *urlRepository) GetByShortCode(ctx context.Context, code string) (*models.URL, error) {
	query := `
		SELECT id, user_id, original_url, short_code, is_private, clicks, expires_at, created_at, updated_at
		FROM urls
		WHERE short_code = $1
	`

	return r.scanOne(r.db.Pool.QueryRow(ctx, query, code))
}

func (r *urlRepository) GetByID(ctx context.Context, id string) (*models.URL, error) {
	query := `
		SELECT id, user_id, original_url, short_code, is_private, clicks, expires_at, created_at, updated_at
		FROM urls
		WHERE id = $1
	`

	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *urlRepository) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return exists, nil
}

func (r *urlRepository) ListByUser(ctx context.Context, input models.ListURLsInput) ([]models.URL, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM urls WHERE user_id = $1`
	if err := r.db.Pool.QueryRow(ctx, countQuery, input.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count urls: %w", err)
	}

	sortBy, ok := sortColumns[input.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if input.Order == "asc" {
		order = "ASC"
	}

	offset := (input.Page - 1) * input.Limit
	query := fmt.Sprintf(`
		SELECT id, user_id, original_url, short_code, is_private, clicks, expires_at, created_at, updated_at
		FROM urls
		WHERE user_id = $1
		ORDER BY %s %s
		LIMIT $2 OFFSET $3
	`, sortBy, order)

	rows, err := r.db.Pool.Query(ctx, query, input.UserID, input.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	urls := make([]models.URL, 0, input.Limit)
	for rows.Next() {
		var u models.URL
		if err := rows.Scan(
			&u.ID,
			&u.UserID,
			&u.OriginalURL,
			&u.ShortCode,
			&u.IsPrivate,
			&u.Clicks,
			&u.ExpiresAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read urls: %w", err)
	}

	return urls, total, nil
}

func (r *urlRepository) Update(ctx context.Context, url *models.URL) error {
	query := `
		UPDATE urls
		SET short_code = $2, is_private = $3, expires_at = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		url.ID,
		url.ShortCode,
		url.IsPrivate,
		url.ExpiresAt,
	).Scan(&url.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrURLNotFound
		}
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to update url: %w", err)
	}

	return nil
}

func (r *urlRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM urls WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete url: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrURLNotFound
	}

	return nil
}

func (r *urlRepository) IncrementClicks(ctx context.Context, id string) error {
	query := `UPDATE urls SET clicks = clicks + 1 WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrURLNotFound
	}

	return nil
}

func (r *urlRepository) scanOne(row pgx.Row) (*models.URL, error) {
	url := &models.URL{}
	err := row.Scan(
		&url.ID,
		&url.UserID,
		&url.OriginalURL,
		&url.ShortCode,
		&url.IsPrivate,
		&url.Clicks,
		&url.ExpiresAt,
		&url.CreatedAt,
		&url.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return url, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Muntazir86/short-it/internal/models"
	"github.com/jackc/pgx/v5"
)

// TimeRange bounds an aggregate query. A zero Start or End leaves that
// side of the range open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

type ClickRepository interface {
	Record(ctx context.Context, click *models.Click) error

	CountClicks(ctx context.Context, urlID string, tr TimeRange) (int64, error)
	ClicksByDate(ctx context.Context, urlID string, tr TimeRange) ([]models.DateClicks, error)
	TopReferrers(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.ReferrerClicks, error)
	TopCountries(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.CountryClicks, error)
	TopBrowsers(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.BrowserClicks, error)
	DeviceBreakdown(ctx context.Context, urlID string, tr TimeRange) ([]models.DeviceClicks, error)

	CountURLsByUser(ctx context.Context, userID string) (int64, error)
	CountClicksByUser(ctx context.Context, userID string, tr TimeRange) (int64, error)
	TopURLsByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.TopURL, error)
	ClicksByDateForUser(ctx context.Context, userID string, tr TimeRange) ([]models.DateClicks, error)
	TopReferrersByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.ReferrerClicks, error)
	TopCountriesByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.CountryClicks, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Record(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO clicks (url_id, clicked_at, ip_address, country, city, referrer, browser, os, device_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		click.URLID,
		click.ClickedAt,
		click.IPAddress,
		click.Country,
		click.City,
		click.Referrer,
		click.Browser,
		click.OS,
		click.DeviceType,
	).Scan(&click.ID)

	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// rangeClause renders the optional time bounds for column col starting
// at placeholder index next. Args for the rendered placeholders are
// returned in order.
func rangeClause(col string, tr TimeRange, next int) (string, []any) {
	clause := ""
	args := []any{}
	if !tr.Start.IsZero() {
		clause += fmt.Sprintf(" AND %s >= $%d", col, next)
		args = append(args, tr.Start)
		next++
	}
	if !tr.End.IsZero() {
		clause += fmt.Sprintf(" AND %s <= $%d", col, next)
		args = append(args, tr.End)
	}
	return clause, args
}

func (r *clickRepository) CountClicks(ctx context.Context, urlID string, tr TimeRange) (int64, error) {
	clause, extra := rangeClause("clicked_at", tr, 2)
	query := `SELECT COUNT(*) FROM clicks WHERE url_id = $1` + clause

	var total int64
	args := append([]any{urlID}, extra...)
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return total, nil
}

func (r *clickRepository) ClicksByDate(ctx context.Context, urlID string, tr TimeRange) ([]models.DateClicks, error) {
	clause, extra := rangeClause("clicked_at", tr, 2)
	query := `
		SELECT TO_CHAR(DATE(clicked_at), 'YYYY-MM-DD') AS date, COUNT(*) AS clicks
		FROM clicks
		WHERE url_id = $1` + clause + `
		GROUP BY DATE(clicked_at)
		ORDER BY date ASC
	`

	args := append([]any{urlID}, extra...)
	return r.queryDateClicks(ctx, query, args...)
}

func (r *clickRepository) TopReferrers(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.ReferrerClicks, error) {
	rows, err := r.groupByURL(ctx, "referrer", urlID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrers: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(source string, clicks int64) models.ReferrerClicks {
		return models.ReferrerClicks{Source: source, Clicks: clicks}
	})
}

func (r *clickRepository) TopCountries(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.CountryClicks, error) {
	rows, err := r.groupByURL(ctx, "country", urlID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get countries: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(country string, clicks int64) models.CountryClicks {
		return models.CountryClicks{Country: country, Clicks: clicks}
	})
}

func (r *clickRepository) TopBrowsers(ctx context.Context, urlID string, tr TimeRange, limit int) ([]models.BrowserClicks, error) {
	rows, err := r.groupByURL(ctx, "browser", urlID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get browsers: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(name string, clicks int64) models.BrowserClicks {
		return models.BrowserClicks{Name: name, Clicks: clicks}
	})
}

func (r *clickRepository) DeviceBreakdown(ctx context.Context, urlID string, tr TimeRange) ([]models.DeviceClicks, error) {
	rows, err := r.groupByURL(ctx, "device_type", urlID, tr, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(deviceType string, clicks int64) models.DeviceClicks {
		return models.DeviceClicks{Type: deviceType, Clicks: clicks}
	})
}

// groupByURL runs the shared group-count query for one dimension
// column of a single url. A non-positive limit returns all groups.
func (r *clickRepository) groupByURL(ctx context.Context, col, urlID string, tr TimeRange, limit int) (pgx.Rows, error) {
	clause, extra := rangeClause("clicked_at", tr, 2)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS clicks
		FROM clicks
		WHERE url_id = $1`, col) + clause + `
		GROUP BY ` + col + `
		ORDER BY clicks DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	args := append([]any{urlID}, extra...)
	return r.db.Pool.Query(ctx, query, args...)
}

func (r *clickRepository) CountURLsByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM urls WHERE user_id = $1`

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count user urls: %w", err)
	}

	return total, nil
}

func (r *clickRepository) CountClicksByUser(ctx context.Context, userID string, tr TimeRange) (int64, error) {
	clause, extra := rangeClause("c.clicked_at", tr, 2)
	query := `
		SELECT COUNT(*)
		FROM clicks c
		JOIN urls u ON c.url_id = u.id
		WHERE u.user_id = $1` + clause

	var total int64
	args := append([]any{userID}, extra...)
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count user clicks: %w", err)
	}

	return total, nil
}

func (r *clickRepository) TopURLsByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.TopURL, error) {
	// Bounds live in the join condition so urls without clicks in the
	// range still appear with a zero count.
	clause, extra := rangeClause("c.clicked_at", tr, 2)
	query := `
		SELECT u.id, u.short_code, COUNT(c.id) AS clicks
		FROM urls u
		LEFT JOIN clicks c ON c.url_id = u.id` + clause + `
		WHERE u.user_id = $1
		GROUP BY u.id, u.short_code
		ORDER BY clicks DESC
		LIMIT ` + fmt.Sprint(limit)

	args := append([]any{userID}, extra...)
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top urls: %w", err)
	}
	defer rows.Close()

	var top []models.TopURL
	for rows.Next() {
		var t models.TopURL
		if err := rows.Scan(&t.ID, &t.ShortCode, &t.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan top url: %w", err)
		}
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top urls: %w", err)
	}

	return top, nil
}

func (r *clickRepository) ClicksByDateForUser(ctx context.Context, userID string, tr TimeRange) ([]models.DateClicks, error) {
	clause, extra := rangeClause("c.clicked_at", tr, 2)
	query := `
		SELECT TO_CHAR(DATE(c.clicked_at), 'YYYY-MM-DD') AS date, COUNT(*) AS clicks
		FROM clicks c
		JOIN urls u ON c.url_id = u.id
		WHERE u.user_id = $1` + clause + `
		GROUP BY DATE(c.clicked_at)
		ORDER BY date ASC
	`

	args := append([]any{userID}, extra...)
	return r.queryDateClicks(ctx, query, args...)
}

func (r *clickRepository) TopReferrersByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.ReferrerClicks, error) {
	rows, err := r.groupByUser(ctx, "c.referrer", userID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user referrers: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(source string, clicks int64) models.ReferrerClicks {
		return models.ReferrerClicks{Source: source, Clicks: clicks}
	})
}

func (r *clickRepository) TopCountriesByUser(ctx context.Context, userID string, tr TimeRange, limit int) ([]models.CountryClicks, error) {
	rows, err := r.groupByUser(ctx, "c.country", userID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user countries: %w", err)
	}
	defer rows.Close()

	return scanPairs(rows, func(country string, clicks int64) models.CountryClicks {
		return models.CountryClicks{Country: country, Clicks: clicks}
	})
}

func (r *clickRepository) groupByUser(ctx context.Context, col, userID string, tr TimeRange, limit int) (pgx.Rows, error) {
	clause, extra := rangeClause("c.clicked_at", tr, 2)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS clicks
		FROM clicks c
		JOIN urls u ON c.url_id = u.id
		WHERE u.user_id = $1`, col) + clause + `
		GROUP BY ` + col + `
		ORDER BY clicks DESC
		LIMIT ` + fmt.Sprint(limit)

	args := append([]any{userID}, extra...)
	return r.db.Pool.Query(ctx, query, args...)
}

func (r *clickRepository) queryDateClicks(ctx context.Context, query string, args ...any) ([]models.DateClicks, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get clicks by date: %w", err)
	}
	defer rows.Close()

	var stats []models.DateClicks
	for rows.Next() {
		var d models.DateClicks
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan date clicks: %w", err)
		}
		stats = append(stats, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read date clicks: %w", err)
	}

	return stats, nil
}

func scanPairs[T any](rows pgx.Rows, build func(key string, clicks int64) T) ([]T, error) {
	var out []T
	for rows.Next() {
		var key string
		var clicks int64
		if err := rows.Scan(&key, &clicks); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		out = append(out, build(key, clicks))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read aggregate rows: %w", err)
	}

	return out, nil
}

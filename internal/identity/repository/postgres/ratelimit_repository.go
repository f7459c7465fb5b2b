package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
)

type RateLimitRepository struct {
	db DBTX
}

func NewRateLimitRepository(db DBTX) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Hit starts or bumps the window for key in one upsert. An expired window
// restarts at count 1; the statement is the whole critical section, so
// concurrent hits on one key serialize in the database.
func (r *RateLimitRepository) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (*domain.RateLimitWindow, error) {
	query := `
		INSERT INTO rate_limit_windows (key, window_start, count)
		VALUES ($1, $3, 1)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN rate_limit_windows.window_start <= $3::timestamptz - make_interval(secs => $2) THEN 1
				ELSE rate_limit_windows.count + 1
			END,
			window_start = CASE
				WHEN rate_limit_windows.window_start <= $3::timestamptz - make_interval(secs => $2) THEN $3::timestamptz
				ELSE rate_limit_windows.window_start
			END
		RETURNING window_start, count, blacklist_until;
	`
	row := r.db.QueryRow(ctx, query, key, window.Seconds(), now)

	win := &domain.RateLimitWindow{Key: key}
	if err := row.Scan(&win.WindowStart, &win.Count, &win.BlacklistUntil); err != nil {
		return nil, fmt.Errorf("failed to hit rate limit window: %w", err)
	}
	return win, nil
}

func (r *RateLimitRepository) Blacklist(ctx context.Context, key string, until time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rate_limit_windows (key, window_start, count, blacklist_until)
		VALUES ($1, now(), 0, $2)
		ON CONFLICT (key) DO UPDATE SET blacklist_until = $2
	`, key, until)
	return err
}

func (r *RateLimitRepository) BlacklistedUntil(ctx context.Context, key string) (*time.Time, error) {
	var until *time.Time
	err := r.db.QueryRow(ctx, `
		SELECT blacklist_until FROM rate_limit_windows WHERE key = $1
	`, key).Scan(&until)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read blacklist: %w", err)
	}
	return until, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `id, identity_id, tenant_id, token_hash, issued_at, expires_at,
	       revoked_at, revocation_reason, replaced_by_token_id, source_ip`

func (r *TokenRepository) Store(ctx context.Context, t *domain.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (id, identity_id, tenant_id, token_hash, issued_at,
	          expires_at, revoked_at, revocation_reason, replaced_by_token_id, source_ip)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.IdentityID, t.TenantID, t.TokenHash, t.IssuedAt,
		t.ExpiresAt, t.RevokedAt, nullIfEmpty(t.RevocationReason), t.ReplacedByID, t.SourceIP)
	return err
}

func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM refresh_tokens
		WHERE token_hash = $1
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, hash)

	token, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return token, nil
}

// Rotate inserts the successor and revokes the spent token in one
// transaction. The revoke is guarded on the token still being live; when
// another rotation already spent it the transaction rolls back and the
// caller sees false.
func (r *TokenRepository) Rotate(ctx context.Context, oldID string, successor *domain.RefreshToken, now time.Time) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, identity_id, tenant_id, token_hash, issued_at, expires_at, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, successor.ID, successor.IdentityID, successor.TenantID, successor.TokenHash,
		successor.IssuedAt, successor.ExpiresAt, successor.SourceIP)
	if err != nil {
		return false, fmt.Errorf("failed to insert successor token: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2, revocation_reason = $3, replaced_by_token_id = $4
		WHERE id = $1 AND revoked_at IS NULL
	`, oldID, now, authconstant.RevocationReasonRotated, successor.ID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke rotated token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit rotation: %w", err)
	}
	return true, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, id, reason string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2, revocation_reason = $3
		WHERE id = $1 AND revoked_at IS NULL
	`, id, now, reason)
	return err
}

// RevokeDescendants follows replaced_by_token_id forward from id and
// revokes every live token in the chain.
func (r *TokenRepository) RevokeDescendants(ctx context.Context, id, reason string, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		WITH RECURSIVE chain AS (
			SELECT id, replaced_by_token_id FROM refresh_tokens WHERE id = $1
			UNION ALL
			SELECT rt.id, rt.replaced_by_token_id
			FROM refresh_tokens rt
			JOIN chain c ON rt.id = c.replaced_by_token_id
		)
		UPDATE refresh_tokens
		SET revoked_at = $2, revocation_reason = $3
		WHERE id IN (SELECT id FROM chain) AND revoked_at IS NULL
	`, id, now, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke token chain: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *TokenRepository) RevokeAllForIdentity(ctx context.Context, identityID, reason string, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2, revocation_reason = $3
		WHERE identity_id = $1 AND revoked_at IS NULL
	`, identityID, now, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke identity tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *TokenRepository) CountActive(ctx context.Context, identityID string, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM refresh_tokens
		WHERE identity_id = $1 AND revoked_at IS NULL AND expires_at > $2
	`, identityID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tokens: %w", err)
	}
	return count, nil
}

func (r *TokenRepository) RevokeOldest(ctx context.Context, identityID, reason string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $2, revocation_reason = $3
		WHERE id = (
			SELECT id FROM refresh_tokens
			WHERE identity_id = $1 AND revoked_at IS NULL AND expires_at > $2
			ORDER BY issued_at ASC
			LIMIT 1
		)
	`, identityID, now, reason)
	return err
}

func (r *TokenRepository) ListActive(ctx context.Context, identityID string, now time.Time) ([]domain.RefreshToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+tokenColumns+`
		FROM refresh_tokens
		WHERE identity_id = $1 AND revoked_at IS NULL AND expires_at > $2
		ORDER BY issued_at DESC
	`, identityID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	return tokens, rows.Err()
}

func scanToken(row pgx.Row) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	var reason *string
	err := row.Scan(
		&t.ID, &t.IdentityID, &t.TenantID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt,
		&t.RevokedAt, &reason, &t.ReplacedByID, &t.SourceIP,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		t.RevocationReason = *reason
	}
	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
)

// DBTX is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type IdentityRepository struct {
	db DBTX
}

func NewIdentityRepository(db DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `id, tenant_id, email, role, password_hash, failed_login_count,
	       lockout_until, password_changed_at, password_expires_at, must_change_password,
	       mfa_enabled, mfa_secret_encrypted, is_active, last_login_at, last_failed_login_at,
	       created_at, updated_at`

func (r *IdentityRepository) GetByEmail(ctx context.Context, tenantID *string, email string) (*domain.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE lower(email) = lower($1) AND tenant_id IS NOT DISTINCT FROM $2
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, email, tenantID)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}
	return identity, nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE id = $1
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, id)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity by id: %w", err)
	}
	return identity, nil
}

func (r *IdentityRepository) RecordLoginAttempt(ctx context.Context, email string, tenantID *string, ip string, success bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_attempts (id, email, tenant_id, ip_address, attempt_time, successful)
		VALUES (gen_random_uuid(), $1, $2, $3, now(), $4)
	`, email, tenantID, ip, success)
	return err
}

// RegisterFailedAttempt is a single conditional update so concurrent
// failures against one identity cannot lose increments. Reaching the
// threshold sets the lockout and resets the counter in the same statement.
func (r *IdentityRepository) RegisterFailedAttempt(ctx context.Context, id string, threshold int, lockout time.Duration, now time.Time) (*domain.FailedAttemptOutcome, error) {
	query := `
		UPDATE identities SET
			failed_login_count = CASE WHEN failed_login_count + 1 >= $2 THEN 0 ELSE failed_login_count + 1 END,
			lockout_until = CASE WHEN failed_login_count + 1 >= $2 THEN $3::timestamptz ELSE lockout_until END,
			last_failed_login_at = $4,
			updated_at = $4
		WHERE id = $1
		RETURNING failed_login_count, lockout_until;
	`
	row := r.db.QueryRow(ctx, query, id, threshold, now.Add(lockout), now)

	var outcome domain.FailedAttemptOutcome
	var lockoutUntil *time.Time
	if err := row.Scan(&outcome.FailedCount, &lockoutUntil); err != nil {
		return nil, fmt.Errorf("failed to register failed attempt: %w", err)
	}

	// A stale, already-expired lockout left in the column is not a fresh one.
	if lockoutUntil != nil && lockoutUntil.After(now) {
		outcome.LockoutUntil = lockoutUntil
	}
	return &outcome, nil
}

func (r *IdentityRepository) ResetLoginState(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE identities
		SET failed_login_count = 0, lockout_until = NULL, last_login_at = $2, updated_at = $2
		WHERE id = $1
	`, id, now)
	return err
}

func (r *IdentityRepository) ClearLockout(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE identities
		SET failed_login_count = 0, lockout_until = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

// UpdatePassword swaps the hash and archives the previous one in the same
// transaction so history checks never miss a hash.
func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, newHash string, changedAt, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldHash string
	err = tx.QueryRow(ctx, `SELECT password_hash FROM identities WHERE id = $1 FOR UPDATE`, id).Scan(&oldHash)
	if err != nil {
		return fmt.Errorf("failed to lock identity row: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO password_history (identity_id, password_hash, created_at)
		VALUES ($1, $2, $3)
	`, id, oldHash, changedAt)
	if err != nil {
		return fmt.Errorf("failed to archive password hash: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE identities
		SET password_hash = $2, password_changed_at = $3, password_expires_at = $4,
		    must_change_password = FALSE, updated_at = $3
		WHERE id = $1
	`, id, newHash, changedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *IdentityRepository) PasswordHistory(ctx context.Context, id string, depth int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT password_hash FROM password_history
		WHERE identity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, id, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to load password history: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// EnableMfa persists the secret, replaces the backup-code batch and flips
// the flag in one transaction. A failed setup leaves nothing behind.
func (r *IdentityRepository) EnableMfa(ctx context.Context, id string, encryptedSecret []byte, codeHashes []string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE identities
		SET mfa_enabled = TRUE, mfa_secret_encrypted = $2, updated_at = $3
		WHERE id = $1
	`, id, encryptedSecret, now)
	if err != nil {
		return fmt.Errorf("failed to enable mfa: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM backup_codes WHERE identity_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear old backup codes: %w", err)
	}

	for _, hash := range codeHashes {
		_, err = tx.Exec(ctx, `
			INSERT INTO backup_codes (id, identity_id, code_hash, used, created_at)
			VALUES (gen_random_uuid(), $1, $2, FALSE, $3)
		`, id, hash, now)
		if err != nil {
			return fmt.Errorf("failed to store backup code: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *IdentityRepository) BackupCodes(ctx context.Context, identityID string) ([]domain.BackupCode, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, identity_id, code_hash, used, used_at, created_at
		FROM backup_codes
		WHERE identity_id = $1
		ORDER BY created_at
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.BackupCode
	for rows.Next() {
		var c domain.BackupCode
		if err := rows.Scan(&c.ID, &c.IdentityID, &c.CodeHash, &c.Used, &c.UsedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// MarkBackupCodeUsed burns a code only if it is still unused, so two
// concurrent presenters of the same code get one success.
func (r *IdentityRepository) MarkBackupCodeUsed(ctx context.Context, codeID string, usedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE backup_codes SET used = TRUE, used_at = $2
		WHERE id = $1 AND used = FALSE
	`, codeID, usedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark backup code used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DisableMfa clears the secret together with the flag; the identities
// table enforces that the two always agree.
func (r *IdentityRepository) DisableMfa(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE identities
		SET mfa_enabled = FALSE, mfa_secret_encrypted = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to disable mfa: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM backup_codes WHERE identity_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup codes: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *IdentityRepository) CreatePasswordReset(ctx context.Context, token *domain.PasswordResetToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, identity_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.IdentityID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

// ConsumePasswordReset burns the token only if it is still unused and
// unexpired, so concurrent presenters of the same token get one success.
func (r *IdentityRepository) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (*domain.PasswordResetToken, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, identity_id, token_hash, expires_at, used_at, created_at;
	`
	row := r.db.QueryRow(ctx, query, tokenHash, now)

	var t domain.PasswordResetToken
	err := row.Scan(&t.ID, &t.IdentityID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume password reset token: %w", err)
	}
	return &t, nil
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var i domain.Identity
	err := row.Scan(
		&i.ID, &i.TenantID, &i.Email, &i.Role, &i.PasswordHash, &i.FailedLoginCount,
		&i.LockoutUntil, &i.PasswordChangedAt, &i.PasswordExpiresAt, &i.MustChangePassword,
		&i.MfaEnabled, &i.MfaSecretEncrypted, &i.IsActive, &i.LastLoginAt, &i.LastFailedLoginAt,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

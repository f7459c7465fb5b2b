package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
)

func identityRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "email", "role", "password_hash", "failed_login_count",
		"lockout_until", "password_changed_at", "password_expires_at", "must_change_password",
		"mfa_enabled", "mfa_secret_encrypted", "is_active", "last_login_at", "last_failed_login_at",
		"created_at", "updated_at",
	})
}

func addIdentityRow(rows *pgxmock.Rows, id, email string) *pgxmock.Rows {
	return rows.AddRow(
		id, (*string)(nil), email, "employee", "$2a$10$hash", 0,
		(*time.Time)(nil), repoNow.Add(-30*24*time.Hour), (*time.Time)(nil), false,
		false, []byte(nil), true, (*time.Time)(nil), (*time.Time)(nil),
		repoNow.Add(-90*24*time.Hour), repoNow,
	)
}

func TestGetByEmailScopesToTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	tenantID := "tenant-7"

	mock.ExpectQuery(`SELECT (.+) FROM identities`).
		WithArgs("alice@example.com", &tenantID).
		WillReturnRows(addIdentityRow(identityRows(), "id-1", "alice@example.com"))

	identity, err := repo.GetByEmail(context.Background(), &tenantID, "alice@example.com")

	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "id-1", identity.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailMissReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM identities`).
		WithArgs("nobody@example.com", (*string)(nil)).
		WillReturnRows(identityRows())

	identity, err := repo.GetByEmail(context.Background(), nil, "nobody@example.com")

	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterFailedAttemptBelowThreshold(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectQuery(`UPDATE identities SET`).
		WithArgs("id-1", 5, repoNow.Add(15*time.Minute), repoNow).
		WillReturnRows(pgxmock.NewRows([]string{"failed_login_count", "lockout_until"}).
			AddRow(3, (*time.Time)(nil)))

	outcome, err := repo.RegisterFailedAttempt(context.Background(), "id-1", 5, 15*time.Minute, repoNow)

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.FailedCount)
	assert.Nil(t, outcome.LockoutUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterFailedAttemptTripsLockout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	lockedUntil := repoNow.Add(15 * time.Minute)

	mock.ExpectQuery(`UPDATE identities SET`).
		WithArgs("id-1", 5, lockedUntil, repoNow).
		WillReturnRows(pgxmock.NewRows([]string{"failed_login_count", "lockout_until"}).
			AddRow(0, &lockedUntil))

	outcome, err := repo.RegisterFailedAttempt(context.Background(), "id-1", 5, 15*time.Minute, repoNow)

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.FailedCount)
	require.NotNil(t, outcome.LockoutUntil)
	assert.Equal(t, lockedUntil, *outcome.LockoutUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterFailedAttemptIgnoresStaleLockout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	stale := repoNow.Add(-time.Hour)

	mock.ExpectQuery(`UPDATE identities SET`).
		WithArgs("id-1", 5, repoNow.Add(15*time.Minute), repoNow).
		WillReturnRows(pgxmock.NewRows([]string{"failed_login_count", "lockout_until"}).
			AddRow(1, &stale))

	outcome, err := repo.RegisterFailedAttempt(context.Background(), "id-1", 5, 15*time.Minute, repoNow)

	require.NoError(t, err)
	assert.Nil(t, outcome.LockoutUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordArchivesOldHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	expiresAt := repoNow.AddDate(0, 0, 90)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT password_hash FROM identities WHERE id = \$1 FOR UPDATE`).
		WithArgs("id-1").
		WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow("$2a$10$old"))
	mock.ExpectExec(`INSERT INTO password_history`).
		WithArgs("id-1", "$2a$10$old", repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE identities`).
		WithArgs("id-1", "$2a$10$new", repoNow, expiresAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = repo.UpdatePassword(context.Background(), "id-1", "$2a$10$new", repoNow, expiresAt)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnableMfaReplacesBackupCodes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	secret := []byte("ciphertext")
	hashes := []string{"hash-a", "hash-b"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identities`).
		WithArgs("id-1", secret, repoNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM backup_codes`).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO backup_codes`).
		WithArgs("id-1", "hash-a", repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO backup_codes`).
		WithArgs("id-1", "hash-b", repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = repo.EnableMfa(context.Background(), "id-1", secret, hashes, repoNow)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBackupCodeUsedWinsRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectExec(`UPDATE backup_codes SET used = TRUE`).
		WithArgs("bc-1", repoNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	burned, err := repo.MarkBackupCodeUsed(context.Background(), "bc-1", repoNow)

	require.NoError(t, err)
	assert.True(t, burned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBackupCodeUsedLosesRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectExec(`UPDATE backup_codes SET used = TRUE`).
		WithArgs("bc-1", repoNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	burned, err := repo.MarkBackupCodeUsed(context.Background(), "bc-1", repoNow)

	require.NoError(t, err)
	assert.False(t, burned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisableMfaClearsSecretAndBackupCodes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identities`).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM backup_codes`).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	err = repo.DisableMfa(context.Background(), "id-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePasswordReset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	expiresAt := repoNow.Add(30 * time.Minute)

	mock.ExpectExec(`INSERT INTO password_reset_tokens`).
		WithArgs("prt-1", "id-1", "deadbeef", expiresAt, repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.CreatePasswordReset(context.Background(), &domain.PasswordResetToken{
		ID:         "prt-1",
		IdentityID: "id-1",
		TokenHash:  "deadbeef",
		ExpiresAt:  expiresAt,
		CreatedAt:  repoNow,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumePasswordResetBurnsLiveToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)
	expiresAt := repoNow.Add(10 * time.Minute)

	mock.ExpectQuery(`UPDATE password_reset_tokens`).
		WithArgs("deadbeef", repoNow).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "identity_id", "token_hash", "expires_at", "used_at", "created_at",
		}).AddRow("prt-1", "id-1", "deadbeef", expiresAt, &repoNow, repoNow.Add(-time.Minute)))

	token, err := repo.ConsumePasswordReset(context.Background(), "deadbeef", repoNow)

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "id-1", token.IdentityID)
	require.NotNil(t, token.UsedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumePasswordResetSpentTokenReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectQuery(`UPDATE password_reset_tokens`).
		WithArgs("deadbeef", repoNow).
		WillReturnError(pgx.ErrNoRows)

	token, err := repo.ConsumePasswordReset(context.Background(), "deadbeef", repoNow)

	require.NoError(t, err)
	assert.Nil(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordHistoryOrdersNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdentityRepository(mock)

	mock.ExpectQuery(`SELECT password_hash FROM password_history`).
		WithArgs("id-1", 5).
		WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).
			AddRow("$2a$10$newest").
			AddRow("$2a$10$older"))

	hashes, err := repo.PasswordHistory(context.Background(), "id-1", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"$2a$10$newest", "$2a$10$older"}, hashes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

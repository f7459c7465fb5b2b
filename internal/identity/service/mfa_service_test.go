package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherror "github.com/MorisHR/HRAPP-sub003/internal/errors"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/service"
	"github.com/MorisHR/HRAPP-sub003/internal/mocks"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

const testPassphrase = "0123456789abcdef0123456789abcdef"

func newMfaFixture(t *testing.T, ctrl *gomock.Controller) (*mocks.MockIdentityRepository, *service.MFAService, *service.SecretCipher) {
	t.Helper()

	cipher, err := service.NewSecretCipher(testPassphrase)
	require.NoError(t, err)

	repo := mocks.NewMockIdentityRepository(ctrl)
	svc := service.NewMFAService(repo, cipher, "MorisHR").
		WithClock(func() time.Time { return testNow })

	return repo, svc, cipher
}

func enrolledIdentity(t *testing.T, cipher *service.SecretCipher, secret string) *domain.Identity {
	t.Helper()
	encrypted, err := cipher.Encrypt(secret)
	require.NoError(t, err)
	return &domain.Identity{
		ID:                 "id-1",
		Email:              "alice@example.com",
		MfaEnabled:         true,
		MfaSecretEncrypted: encrypted,
		IsActive:           true,
	}
}

func totpCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, at)
	require.NoError(t, err)
	return code
}

// backupCodeHash mirrors how the service stores backup codes.
func backupCodeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func TestSetupGeneratesSecretAndBackupCodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, svc, _ := newMfaFixture(t, ctrl)

	out, err := svc.Setup(&domain.Identity{ID: "id-1", Email: "alice@example.com"})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Secret)
	assert.Contains(t, out.QRPayload, "otpauth://totp/")
	assert.Contains(t, out.QRPayload, "MorisHR")
	require.Len(t, out.BackupCodes, authconstant.BackupCodeBatchSize)
	for _, code := range out.BackupCodes {
		assert.Len(t, code, authconstant.BackupCodeLength)
		assert.NotContains(t, code[:4], "I")
		assert.NotContains(t, code[:4], "O")
	}
}

func TestVerifyTotpAcceptsAdjacentSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, svc, cipher := newMfaFixture(t, ctrl)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "MorisHR", AccountName: "alice@example.com"})
	require.NoError(t, err)
	identity := enrolledIdentity(t, cipher, key.Secret())

	assert.True(t, svc.VerifyTotp(identity, totpCode(t, key.Secret(), testNow)))
	assert.True(t, svc.VerifyTotp(identity, totpCode(t, key.Secret(), testNow.Add(-30*time.Second))))
	assert.True(t, svc.VerifyTotp(identity, totpCode(t, key.Secret(), testNow.Add(30*time.Second))))
	assert.False(t, svc.VerifyTotp(identity, totpCode(t, key.Secret(), testNow.Add(-120*time.Second))))
	assert.False(t, svc.VerifyTotp(identity, "000000"))
}

func TestVerifyTotpDisabledIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, svc, _ := newMfaFixture(t, ctrl)

	identity := &domain.Identity{ID: "id-1", MfaEnabled: false}
	assert.False(t, svc.VerifyTotp(identity, "123456"))
}

func TestCompleteSetupRejectsWrongCodeWithoutPersisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, svc, _ := newMfaFixture(t, ctrl)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "MorisHR", AccountName: "alice@example.com"})
	require.NoError(t, err)

	err = svc.CompleteSetup(context.Background(), &domain.Identity{ID: "id-1"},
		"000000", key.Secret(), []string{"ABCD1234"})

	assert.ErrorIs(t, err, autherror.ErrInvalidMfaCode)
}

func TestCompleteSetupPersistsEncryptedSecretAndHashes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, svc, cipher := newMfaFixture(t, ctrl)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "MorisHR", AccountName: "alice@example.com"})
	require.NoError(t, err)
	backupCodes := []string{"ABCD1234", "EFGH5678"}

	var gotSecret []byte
	var gotHashes []string
	repo.EXPECT().EnableMfa(gomock.Any(), "id-1", gomock.Any(), gomock.Any(), testNow).
		DoAndReturn(func(_ context.Context, _ string, encrypted []byte, hashes []string, _ time.Time) error {
			gotSecret = encrypted
			gotHashes = hashes
			return nil
		})

	err = svc.CompleteSetup(context.Background(), &domain.Identity{ID: "id-1"},
		totpCode(t, key.Secret(), testNow), key.Secret(), backupCodes)

	require.NoError(t, err)
	require.Len(t, gotHashes, 2)
	assert.Equal(t, backupCodeHash("ABCD1234"), gotHashes[0])

	decrypted, err := cipher.Decrypt(gotSecret)
	require.NoError(t, err)
	assert.Equal(t, key.Secret(), decrypted)
}

func TestVerifyBackupCodeBurnsCodeOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, svc, cipher := newMfaFixture(t, ctrl)

	identity := enrolledIdentity(t, cipher, "JBSWY3DPEHPK3PXP")
	codes := []domain.BackupCode{
		{ID: "bc-1", IdentityID: "id-1", CodeHash: backupCodeHash("ABCD1234")},
		{ID: "bc-2", IdentityID: "id-1", CodeHash: backupCodeHash("EFGH5678")},
	}

	repo.EXPECT().BackupCodes(gomock.Any(), "id-1").Return(codes, nil)
	repo.EXPECT().MarkBackupCodeUsed(gomock.Any(), "bc-1", testNow).Return(true, nil)

	ok, remaining, err := svc.VerifyBackupCode(context.Background(), identity, "abcd-1234")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestVerifyBackupCodeRejectsUsedCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, svc, cipher := newMfaFixture(t, ctrl)

	identity := enrolledIdentity(t, cipher, "JBSWY3DPEHPK3PXP")
	usedAt := testNow.Add(-time.Hour)
	codes := []domain.BackupCode{
		{ID: "bc-1", IdentityID: "id-1", CodeHash: backupCodeHash("ABCD1234"), Used: true, UsedAt: &usedAt},
		{ID: "bc-2", IdentityID: "id-1", CodeHash: backupCodeHash("EFGH5678")},
	}

	repo.EXPECT().BackupCodes(gomock.Any(), "id-1").Return(codes, nil)

	ok, remaining, err := svc.VerifyBackupCode(context.Background(), identity, "ABCD1234")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestVerifyBackupCodeConcurrentPresenterLoses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, svc, cipher := newMfaFixture(t, ctrl)

	identity := enrolledIdentity(t, cipher, "JBSWY3DPEHPK3PXP")
	codes := []domain.BackupCode{
		{ID: "bc-1", IdentityID: "id-1", CodeHash: backupCodeHash("ABCD1234")},
	}

	repo.EXPECT().BackupCodes(gomock.Any(), "id-1").Return(codes, nil)
	repo.EXPECT().MarkBackupCodeUsed(gomock.Any(), "bc-1", testNow).Return(false, nil)

	ok, _, err := svc.VerifyBackupCode(context.Background(), identity, "ABCD1234")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBackupCodeMalformedInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, svc, cipher := newMfaFixture(t, ctrl)

	identity := enrolledIdentity(t, cipher, "JBSWY3DPEHPK3PXP")

	ok, _, err := svc.VerifyBackupCode(context.Background(), identity, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecretCipherRoundTrip(t *testing.T) {
	cipher, err := service.NewSecretCipher(testPassphrase)
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.NotContains(t, string(encrypted), "JBSWY3DPEHPK3PXP")

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", decrypted)
}

func TestSecretCipherRejectsShortPassphrase(t *testing.T) {
	_, err := service.NewSecretCipher("too short")
	assert.Error(t, err)
}

func TestSecretCipherRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := service.NewSecretCipher(testPassphrase)
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	encrypted[len(encrypted)-1] ^= 0xff

	_, err = cipher.Decrypt(encrypted)
	assert.Error(t, err)
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	autherror "github.com/MorisHR/HRAPP-sub003/internal/errors"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/dto"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

// backupCodeLetters excludes I and O to avoid confusion with 1 and 0.
const (
	backupCodeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	backupCodeDigits  = "0123456789"
)

// MFAService generates and verifies time-based one-time codes and
// single-use backup codes. Secrets are AES-GCM encrypted before they reach
// the repository and never logged in plaintext.
type MFAService struct {
	repo   domain.IdentityRepository
	cipher *SecretCipher
	issuer string
	now    func() time.Time
}

func NewMFAService(repo domain.IdentityRepository, cipher *SecretCipher, issuer string) *MFAService {
	return &MFAService{
		repo:   repo,
		cipher: cipher,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock overrides the service's time source. Test hook.
func (s *MFAService) WithClock(now func() time.Time) *MFAService {
	s.now = now
	return s
}

// Setup generates a fresh candidate secret and backup-code batch. Nothing
// is persisted until CompleteSetup verifies a code against the candidate;
// calling Setup again simply supersedes the previous candidate.
func (s *MFAService) Setup(identity *domain.Identity) (*dto.MfaSetupOutput, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: identity.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	codes, err := generateBackupCodes(authconstant.BackupCodeBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	zap.L().Info("mfa setup started",
		zap.String("identity_id", identity.ID),
		zap.Int("backup_codes", len(codes)))

	return &dto.MfaSetupOutput{
		Secret:      key.Secret(),
		QRPayload:   key.URL(),
		BackupCodes: codes,
	}, nil
}

// CompleteSetup verifies submittedCode against the candidate secret and,
// only on success, persists the secret plus backup codes and enables MFA.
// Nothing is written on failure.
func (s *MFAService) CompleteSetup(ctx context.Context, identity *domain.Identity, submittedCode, secret string, backupCodes []string) error {
	if !s.validateCode(submittedCode, secret) {
		zap.L().Warn("mfa setup code rejected", zap.String("identity_id", identity.ID))
		return autherror.ErrInvalidMfaCode
	}

	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt mfa secret: %w", err)
	}

	hashes := make([]string, 0, len(backupCodes))
	for _, code := range backupCodes {
		normalized := normalizeBackupCode(code)
		if len(normalized) != authconstant.BackupCodeLength {
			return autherror.ErrInvalidMfaCode
		}
		hashes = append(hashes, hashBackupCode(normalized))
	}

	if err := s.repo.EnableMfa(ctx, identity.ID, encrypted, hashes, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to enable mfa: %w", err)
	}

	zap.L().Info("mfa enabled", zap.String("identity_id", identity.ID))
	return nil
}

// VerifyTotp checks code against the persisted secret. Returns false when
// MFA is disabled or the code falls outside the current and adjacent steps.
func (s *MFAService) VerifyTotp(identity *domain.Identity, code string) bool {
	if !identity.MfaEnabled || len(identity.MfaSecretEncrypted) == 0 {
		return false
	}

	secret, err := s.cipher.Decrypt(identity.MfaSecretEncrypted)
	if err != nil {
		zap.L().Error("failed to decrypt mfa secret", zap.String("identity_id", identity.ID), zap.Error(err))
		return false
	}

	return s.validateCode(code, secret)
}

// VerifyBackupCode burns an unused backup code. A used code can never be
// accepted again; the repository update is conditional on the unused flag.
func (s *MFAService) VerifyBackupCode(ctx context.Context, identity *domain.Identity, code string) (bool, int, error) {
	normalized := normalizeBackupCode(code)
	if len(normalized) != authconstant.BackupCodeLength {
		return false, 0, nil
	}

	codes, err := s.repo.BackupCodes(ctx, identity.ID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to load backup codes: %w", err)
	}

	hash := hashBackupCode(normalized)
	remaining := 0
	var match *domain.BackupCode
	for i := range codes {
		if codes[i].Used {
			continue
		}
		remaining++
		if codes[i].CodeHash == hash {
			match = &codes[i]
		}
	}

	if match == nil {
		return false, remaining, nil
	}

	burned, err := s.repo.MarkBackupCodeUsed(ctx, match.ID, s.now().UTC())
	if err != nil {
		return false, remaining, fmt.Errorf("failed to mark backup code used: %w", err)
	}
	if !burned {
		// Lost a race with a concurrent presenter of the same code.
		return false, remaining - 1, nil
	}

	zap.L().Info("backup code used",
		zap.String("identity_id", identity.ID),
		zap.Int("remaining", remaining-1))
	return true, remaining - 1, nil
}

// RemainingBackupCodes counts the identity's unused codes.
func (s *MFAService) RemainingBackupCodes(ctx context.Context, identityID string) (int, error) {
	codes, err := s.repo.BackupCodes(ctx, identityID)
	if err != nil {
		return 0, err
	}
	remaining := 0
	for _, c := range codes {
		if !c.Used {
			remaining++
		}
	}
	return remaining, nil
}

// validateCode accepts the current step and one step either side, matching
// authenticator clock drift tolerance.
func (s *MFAService) validateCode(code, secret string) bool {
	code = strings.NewReplacer(" ", "", "-", "").Replace(code)
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func generateBackupCodes(count int) ([]string, error) {
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		letters, err := randomString(backupCodeLetters, 4)
		if err != nil {
			return nil, err
		}
		digits, err := randomString(backupCodeDigits, 4)
		if err != nil {
			return nil, err
		}
		codes = append(codes, letters+digits)
	}
	return codes, nil
}

func randomString(charset string, length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = charset[int(b)%len(charset)]
	}
	return string(out), nil
}

func normalizeBackupCode(code string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(code))
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.StdEncoding.EncodeToString(sum[:])
}

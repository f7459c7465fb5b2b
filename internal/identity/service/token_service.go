package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/MorisHR/HRAPP-sub003/internal/identity/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
)

type TokenGenerator interface {
	GenerateAccessToken(identity *domain.Identity, now time.Time) (string, time.Time, error)
	GetAccessTokenExpiry() time.Duration
	VerifyAccessToken(tokenString string) (*JWTCustomClaims, error)
	GenerateMfaTicket(identityID, purpose string, now time.Time) (string, error)
	VerifyMfaTicket(ticket, purpose string) (string, error)
}

// MFA ticket purposes. A ticket minted for one step of the login machine
// cannot be redeemed for another.
const (
	MfaTicketPurposeVerify = "mfa_verify"
	MfaTicketPurposeSetup  = "mfa_setup"
)

const mfaTicketExpiry = 5 * time.Minute

// TokenService mints and verifies the short-lived signed access tokens.
// Refresh tokens are opaque and live in the token ledger, not here.
type TokenService struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	IdentityID string  `json:"identity_id"`
	TenantID   *string `json:"tenant_id,omitempty"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
}

func NewTokenService(accessSecret string, accessMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret: accessSecret,
		AccessTokenExpiry: time.Duration(accessMinutes) * time.Minute,
	}
}

func (ts *TokenService) GenerateAccessToken(identity *domain.Identity, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ts.AccessTokenExpiry)

	claims := JWTCustomClaims{
		IdentityID: identity.ID,
		TenantID:   identity.TenantID,
		Email:      identity.Email,
		Role:       identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

type mfaTicketClaims struct {
	jwt.RegisteredClaims
	IdentityID string `json:"identity_id"`
	Purpose    string `json:"purpose"`
}

// GenerateMfaTicket mints a short-lived signed ticket binding a verified
// password leg to the MFA step that must follow it. The ticket is the only
// way to reach VerifyMfa or CompleteMfaSetup; a bare identity id grants
// nothing.
func (ts *TokenService) GenerateMfaTicket(identityID, purpose string, now time.Time) (string, error) {
	claims := mfaTicketClaims{
		IdentityID: identityID,
		Purpose:    purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ExpiresAt: jwt.NewNumericDate(now.Add(mfaTicketExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.AccessTokenSecret))
}

// VerifyMfaTicket validates a ticket and returns the identity it was minted
// for. A ticket with the wrong purpose is rejected.
func (ts *TokenService) VerifyMfaTicket(ticket, purpose string) (string, error) {
	claims := &mfaTicketClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.AccessTokenSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Purpose != purpose || claims.IdentityID == "" {
		return "", fmt.Errorf("invalid mfa ticket")
	}
	return claims.IdentityID, nil
}

// VerifyAccessToken parses and validates the given access token string.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.AccessTokenSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

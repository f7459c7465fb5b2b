package dto

import "time"

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type IdentitySummary struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenantId,omitempty"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
	IPAddress    string `json:"-"`
}

type RevokeInput struct {
	RefreshToken string `json:"refreshToken"`
	IPAddress    string `json:"-"`
}

type SessionOutput struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

package dto

type LoginInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	TenantID  string `json:"-"`
	IPAddress string `json:"-"`
}

// LoginState tells the client which step of the login machine comes next.
type LoginState string

const (
	LoginStateAuthenticated    LoginState = "authenticated"
	LoginStateMfaRequired      LoginState = "mfa_required"
	LoginStateMfaSetupRequired LoginState = "mfa_setup_required"
)

type LoginResult struct {
	State     LoginState       `json:"state"`
	MfaTicket string           `json:"mfaTicket,omitempty"`
	Tokens    *TokenPair       `json:"tokens,omitempty"`
	Identity  *IdentitySummary `json:"identity,omitempty"`
}

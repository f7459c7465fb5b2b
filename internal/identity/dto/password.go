package dto

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=12"`
	IdentityID      string `json:"-"`
	IPAddress       string `json:"-"`
}

type ChangePasswordResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ForgotPasswordInput struct {
	Email     string `json:"email" validate:"required,email"`
	TenantID  string `json:"-"`
	IPAddress string `json:"-"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=12"`
	IPAddress   string `json:"-"`
}

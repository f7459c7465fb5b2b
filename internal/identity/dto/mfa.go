package dto

type MfaSetupInput struct {
	Ticket    string `json:"ticket"`
	IPAddress string `json:"-"`
}

type MfaSetupOutput struct {
	Secret      string   `json:"secret"`
	QRPayload   string   `json:"qrPayload"`
	BackupCodes []string `json:"backupCodes"`
	Ticket      string   `json:"ticket"`
}

type MfaCompleteSetupInput struct {
	Ticket      string   `json:"ticket" validate:"required"`
	Code        string   `json:"code" validate:"required"`
	Secret      string   `json:"secret" validate:"required"`
	BackupCodes []string `json:"backupCodes" validate:"required,min=1"`
	IPAddress   string   `json:"-"`
}

type MfaVerifyInput struct {
	Ticket    string `json:"ticket" validate:"required"`
	Code      string `json:"code" validate:"required"`
	IPAddress string `json:"-"`
}

type MfaVerifyResult struct {
	Tokens               *TokenPair `json:"tokens"`
	UsedBackupCode       bool       `json:"usedBackupCode"`
	RemainingBackupCodes int        `json:"remainingBackupCodes"`
}

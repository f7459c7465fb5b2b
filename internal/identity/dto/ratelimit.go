package dto

type BlacklistInput struct {
	Key         string `json:"key" validate:"required"`
	DurationMin int    `json:"durationMin" validate:"required,min=1"`
	Reason      string `json:"reason" validate:"required"`
}

package domain

import "time"

// FirmSettingsID is the fixed primary key of the singleton settings row.
const FirmSettingsID = "00000000-0000-0000-0000-000000000001"

// FirmSettings holds the firm identity printed on reports.
type FirmSettings struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	LogoURL   string    `json:"logo_url"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// FirmSettingsInput is the body for PUT /api/settings/firm.
type FirmSettingsInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	CNPJ    string `json:"cnpj" validate:"max=20"`
	Address string `json:"address" validate:"max=300"`
	Phone   string `json:"phone" validate:"max=40"`
	Email   string `json:"email" validate:"omitempty,email"`
	Website string `json:"website" validate:"omitempty,url"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
}

package supabase

import (
	"context"
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"
)

// GetFirmSettings returns the singleton settings row, or nil when unset.
func (c *Client) GetFirmSettings(ctx context.Context) (*domain.FirmSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetFirmSettings")
	defer span.End()

	var settings *domain.FirmSettings
	err := c.read(ctx, "supabase/firm_settings", func() error {
		path := From("firm_settings").Select("*").Eq("id", domain.FirmSettingsID).Limit(1).String()
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		settings, err = firstRow[domain.FirmSettings](body, "firm_settings")
		return err
	})
	return settings, err
}

// UpsertFirmSettings writes the singleton row on its fixed id.
func (c *Client) UpsertFirmSettings(ctx context.Context, s domain.FirmSettings) (*domain.FirmSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertFirmSettings")
	defer span.End()

	row := map[string]any{
		"id":         domain.FirmSettingsID,
		"name":       s.Name,
		"cnpj":       s.CNPJ,
		"address":    s.Address,
		"phone":      s.Phone,
		"email":      s.Email,
		"website":    s.Website,
		"logo_url":   s.LogoURL,
		"updated_at": s.UpdatedAt,
	}

	var saved *domain.FirmSettings
	err := c.write(ctx, "supabase/firm_settings", func() error {
		body, err := c.doUpsert(ctx, "firm_settings?on_conflict=id", row)
		if err != nil {
			return err
		}
		saved, err = firstRow[domain.FirmSettings](body, "firm_settings")
		return err
	})
	return saved, err
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var settingsTracer = otel.Tracer("service/settings")

// SettingsService reads and writes the firm identity.
type SettingsService struct {
	store  port.FirmStore
	logger *zap.Logger
}

// NewSettingsService creates the settings service.
func NewSettingsService(store port.FirmStore, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, logger: logger}
}

// GetFirm returns the firm settings, or an empty record before the first save.
func (s *SettingsService) GetFirm(ctx context.Context) (*domain.FirmSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetFirm")
	defer span.End()

	settings, err := s.store.GetFirmSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firm settings: %w", err)
	}
	if settings == nil {
		settings = &domain.FirmSettings{ID: domain.FirmSettingsID}
	}
	return settings, nil
}

// UpdateFirm upserts the singleton settings row.
func (s *SettingsService) UpdateFirm(ctx context.Context, in *domain.FirmSettingsInput) (*domain.FirmSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateFirm")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Website = strings.TrimSpace(in.Website)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertFirmSettings(ctx, domain.FirmSettings{
		ID:      domain.FirmSettingsID,
		Name:    in.Name,
		CNPJ:    strings.TrimSpace(in.CNPJ),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   in.Email,
		Website: in.Website,
		LogoURL: in.LogoURL,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("firm settings updated", zap.String("user_id", callerID(ctx)))
	return saved, nil
}

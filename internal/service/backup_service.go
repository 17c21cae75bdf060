package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var backupTracer = otel.Tracer("service/backup")

// BackupService dumps workspace data and accepts restore uploads.
type BackupService struct {
	store  port.BackupStore
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates the backup service.
func NewBackupService(store port.BackupStore, logger *zap.Logger) *BackupService {
	return &BackupService{store: store, logger: logger, now: time.Now}
}

// Export dumps workspaces, clients, revenues and expenses of one workspace,
// or of every workspace when workspaceID is empty or "all".
func (s *BackupService) Export(ctx context.Context, workspaceID string) (*ExportFile, error) {
	ctx, span := backupTracer.Start(ctx, "BackupService.Export")
	defer span.End()

	workspaceID = strings.TrimSpace(workspaceID)
	scopeLabel := domain.ScopeAll
	var filter []string
	if workspaceID != "" && workspaceID != domain.ScopeAll {
		scopeLabel = workspaceID
		filter = []string{workspaceID}
	}
	span.SetAttributes(attribute.String("scope", scopeLabel))

	ctx = domain.Elevated(ctx)

	workspaces, err := s.store.DumpTable(ctx, "workspaces", filter)
	if err != nil {
		return nil, fmt.Errorf("dump workspaces: %w", err)
	}
	ids := make([]string, 0, len(workspaces))
	for _, raw := range workspaces {
		var w struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decode workspace row: %w", err)
		}
		ids = append(ids, w.ID)
	}
	if len(ids) == 0 {
		return nil, &domain.ErrValidation{Field: "workspaceId", Message: "Nenhum workspace encontrado para exportação."}
	}

	data := domain.BackupData{Workspaces: workspaces}
	g, gCtx := errgroup.WithContext(ctx)
	dump := func(table string, dst *[]json.RawMessage) {
		g.Go(func() error {
			rows, err := s.store.DumpTable(gCtx, table, ids)
			if err != nil {
				return fmt.Errorf("dump %s: %w", table, err)
			}
			if rows == nil {
				rows = []json.RawMessage{}
			}
			*dst = rows
			return nil
		})
	}
	dump("clients", &data.Clients)
	dump("revenues", &data.Revenues)
	dump("expenses", &data.Expenses)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	generatedBy := ""
	if p := domain.PrincipalFrom(ctx); p != nil {
		generatedBy = p.UserID
	}
	body, err := json.MarshalIndent(domain.BackupDocument{
		GeneratedAt:    now,
		GeneratedBy:    generatedBy,
		WorkspaceScope: scopeLabel,
		Data:           data,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	s.logger.Info("backup exported",
		zap.String("scope", scopeLabel),
		zap.String("generated_by", generatedBy),
		zap.Int("clients", len(data.Clients)),
		zap.Int("revenues", len(data.Revenues)),
		zap.Int("expenses", len(data.Expenses)),
	)
	stamp := strings.ReplaceAll(now.Format("2006-01-02T15:04:05.000Z07:00"), ":", "-")
	return &ExportFile{
		Filename:    "lexflow-backup-" + stamp + ".json",
		ContentType: "application/json; charset=utf-8",
		Body:        body,
	}, nil
}

// Restore accepts a backup document and reports what it contains. Data is
// not written back yet; the upload is acknowledged for later processing.
func (s *BackupService) Restore(ctx context.Context, payload []byte) (*domain.RestoreResult, error) {
	_, span := backupTracer.Start(ctx, "BackupService.Restore")
	defer span.End()

	var doc struct {
		Data *domain.BackupData `json:"data"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, &domain.ErrValidation{Field: "file", Message: "Arquivo de backup inválido."}
		}
	}

	var summary domain.RestoreSummary
	if doc.Data != nil {
		summary = domain.RestoreSummary{
			Workspaces: len(doc.Data.Workspaces),
			Clients:    len(doc.Data.Clients),
			Revenues:   len(doc.Data.Revenues),
			Expenses:   len(doc.Data.Expenses),
		}
	}
	span.SetAttributes(attribute.Int("restore.revenues", summary.Revenues), attribute.Int("restore.expenses", summary.Expenses))

	s.logger.Info("backup restore received",
		zap.Int("workspaces", summary.Workspaces),
		zap.Int("clients", summary.Clients),
	)
	return &domain.RestoreResult{
		OK:      true,
		Message: "Restauração recebida. A restauração completa será processada em background.",
		Summary: summary,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var auditTracer = otel.Tracer("service/audit")

// AuditService serves the audit viewer and prunes old audit rows.
type AuditService struct {
	audit     port.AuditStore
	directory port.DirectoryStore
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditService creates the audit service.
func NewAuditService(audit port.AuditStore, directory port.DirectoryStore, metrics *observability.Metrics, logger *zap.Logger) *AuditService {
	return &AuditService{
		audit:     audit,
		directory: directory,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns one page of audit rows, newest first, with the author of
// each change resolved for display.
func (s *AuditService) List(ctx context.Context, scope domain.Scope, f domain.AuditFilter) (*domain.AuditPage, error) {
	ctx, span := auditTracer.Start(ctx, "AuditService.List")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.Label()), attribute.Int("audit.page", f.Page))

	if f.Action != "" && f.Action != domain.AuditInsert && f.Action != domain.AuditUpdate && f.Action != domain.AuditDelete {
		return nil, &domain.ErrValidation{Field: "action", Message: "Ação inválida."}
	}
	query := port.AuditQuery{
		Scope:     scope,
		TableName: f.TableName,
		Action:    f.Action,
		Limit:     domain.AuditPageSize,
	}
	page := domain.SafePage(f.Page, -1, domain.AuditPageSize)
	query.Offset = domain.Offset(page, domain.AuditPageSize)

	rows, total, err := s.audit.ListAuditLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}

	// Past the last page: serve the last page instead.
	if last := domain.SafePage(page, total, domain.AuditPageSize); last < page {
		page = last
		query.Offset = domain.Offset(page, domain.AuditPageSize)
		rows, total, err = s.audit.ListAuditLogs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("list audit logs: %w", err)
		}
	}

	// The store pages server-side; clamp in case the count moved underneath.
	window := domain.Paginate(len(rows), 1, domain.AuditPageSize)
	rows = rows[window.Start:window.End]
	total = max(total, domain.Offset(page, domain.AuditPageSize)+len(rows))

	profiles, err := s.profilesOf(ctx, rows)
	if err != nil {
		// Fall back to raw ids rather than failing the page.
		s.logger.Warn("audit: could not resolve user names", zap.Error(err))
	}
	for i := range rows {
		rows[i].UserDisplay = domain.UserDisplay(rows[i].UserID, profiles)
	}

	return &domain.AuditPage{
		Data:       rows,
		Total:      total,
		Page:       page,
		PageSize:   domain.AuditPageSize,
		TotalPages: domain.TotalPages(total, domain.AuditPageSize),
	}, nil
}

func (s *AuditService) profilesOf(ctx context.Context, rows []domain.AuditLog) (map[string]domain.Profile, error) {
	seen := map[string]bool{}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.UserID != nil && *r.UserID != "" && !seen[*r.UserID] {
			seen[*r.UserID] = true
			ids = append(ids, *r.UserID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := s.directory.ListProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]domain.Profile, len(list))
	for _, p := range list {
		profiles[p.UserID] = p
	}
	return profiles, nil
}

// Cleanup deletes audit rows older than 30 days inside scope.
func (s *AuditService) Cleanup(ctx context.Context, scope domain.Scope) (*domain.AuditCleanupResult, error) {
	ctx, span := auditTracer.Start(ctx, "AuditService.Cleanup")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.Label()))

	before := s.now().Add(-domain.AuditCleanupAge).UTC()
	deleted, err := s.audit.DeleteAuditLogsBefore(ctx, scope, before)
	if err != nil {
		return nil, fmt.Errorf("audit cleanup: %w", err)
	}
	s.metrics.AddAuditPurged("manual", deleted)

	s.logger.Info("audit cleanup",
		zap.String("scope", scope.Label()),
		zap.Time("before", before),
		zap.Int("deleted", deleted),
	)
	return &domain.AuditCleanupResult{OK: true, Before: before, Scope: scope.Label(), Deleted: deleted}, nil
}

// PurgeExpired enforces the 90-day retention over every workspace. It runs
// with the service role and is only called by the background worker.
func (s *AuditService) PurgeExpired(ctx context.Context) (int, error) {
	ctx, span := auditTracer.Start(ctx, "AuditService.PurgeExpired")
	defer span.End()

	before := s.now().Add(-domain.AuditRetentionPeriod).UTC()
	deleted, err := s.audit.DeleteAuditLogsBefore(domain.Elevated(ctx), domain.Scope{All: true}, before)
	if err != nil {
		return 0, fmt.Errorf("audit retention: %w", err)
	}
	s.metrics.AddAuditPurged("retention", deleted)

	s.logger.Info("audit retention applied", zap.Time("before", before), zap.Int("deleted", deleted))
	return deleted, nil
}

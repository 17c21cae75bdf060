package supabase

import (
	"context"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// AuditStore: audit_logs viewer and retention
// ============================================================

// ListAuditLogs returns one page of audit rows, newest first, and the exact
// total for the filters.
func (c *Client) ListAuditLogs(ctx context.Context, q port.AuditQuery) ([]domain.AuditLog, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAuditLogs")
	defer span.End()
	span.SetAttributes(
		attribute.String("scope", q.Scope.Label()),
		attribute.String("table", q.TableName),
		attribute.Int("offset", q.Offset),
	)

	pq := From("audit_logs").Select("*").Scope(q.Scope).Order("created_at", false)
	if q.TableName != "" {
		pq.Eq("table_name", q.TableName)
	}
	if q.Action != "" {
		pq.Eq("action", string(q.Action))
	}
	pq.Offset(q.Offset).Limit(q.Limit)

	var rows []domain.AuditLog
	var total int
	err := c.read(ctx, "supabase/audit_logs", func() error {
		body, n, err := c.doCount(ctx, pq.String())
		if err != nil {
			return err
		}
		total = n
		rows, err = decodeRows[domain.AuditLog](body, "audit_logs")
		return err
	})
	return rows, total, err
}

// DeleteAuditLogsBefore removes rows created before the cut-off inside the
// scope and returns how many were deleted.
func (c *Client) DeleteAuditLogsBefore(ctx context.Context, scope domain.Scope, before time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAuditLogsBefore")
	defer span.End()
	span.SetAttributes(
		attribute.String("scope", scope.Label()),
		attribute.String("before", before.UTC().Format(time.RFC3339)),
	)

	path := From("audit_logs").Select("id").Scope(scope).Lt("created_at", before.UTC().Format(time.RFC3339)).String()

	var deleted int
	err := c.write(ctx, "supabase/audit_logs", func() error {
		body, err := c.doDelete(ctx, path)
		if err != nil {
			return err
		}
		rows, err := decodeRows[map[string]any](body, "audit_logs")
		deleted = len(rows)
		return err
	})
	return deleted, err
}

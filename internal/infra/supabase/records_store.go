package supabase

import (
	"context"
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// RecordStore: clients, classifications, revenues, expenses
// ============================================================

// --- Clients ---

func (c *Client) ListClients(ctx context.Context, scope domain.Scope) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListClients")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.Label()))

	path := From("clients").Select("*").Scope(scope).Order("name", true).String()
	return listRows[domain.Client](ctx, c, "supabase/clients", path)
}

func (c *Client) CreateClient(ctx context.Context, cl domain.Client) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateClient")
	defer span.End()

	row := map[string]any{
		"workspace_id":   cl.WorkspaceID,
		"name":           cl.Name,
		"cpf":            cl.CPF,
		"phone":          cl.Phone,
		"address":        cl.Address,
		"process_number": cl.ProcessNumber,
		"notes":          cl.Notes,
		"created_by":     nullable(cl.CreatedBy),
	}
	return insertRow[domain.Client](ctx, c, "supabase/clients", "clients", row)
}

func (c *Client) UpdateClient(ctx context.Context, scope domain.Scope, id string, fields map[string]any) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	path := From("clients").Eq("id", id).Scope(scope).String()
	return patchRow[domain.Client](ctx, c, "supabase/clients", "cliente", id, path, fields)
}

func (c *Client) DeleteClient(ctx context.Context, scope domain.Scope, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteClient")
	defer span.End()

	return c.deleteScoped(ctx, "supabase/clients", "cliente", id, From("clients").Eq("id", id).Scope(scope).String())
}

// --- Classifications ---

func (c *Client) ListClassifications(ctx context.Context, kind domain.EntryKind, scope domain.Scope) ([]domain.Classification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListClassifications")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)))

	path := From(kind.ClassificationTable()).Select("*").Scope(scope).Order("name", true).String()
	return listRows[domain.Classification](ctx, c, "supabase/classifications", path)
}

func (c *Client) CreateClassification(ctx context.Context, kind domain.EntryKind, cl domain.Classification) (*domain.Classification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateClassification")
	defer span.End()

	row := map[string]any{
		"workspace_id": cl.WorkspaceID,
		"name":         cl.Name,
		"code":         cl.Code,
		"description":  cl.Description,
		"active":       cl.Active,
		"created_by":   nullable(cl.CreatedBy),
	}
	return insertRow[domain.Classification](ctx, c, "supabase/classifications", kind.ClassificationTable(), row)
}

func (c *Client) UpdateClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, fields map[string]any) (*domain.Classification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateClassification")
	defer span.End()

	path := From(kind.ClassificationTable()).Eq("id", id).Scope(scope).String()
	return patchRow[domain.Classification](ctx, c, "supabase/classifications", "classificação", id, path, fields)
}

func (c *Client) DeleteClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteClassification")
	defer span.End()

	path := From(kind.ClassificationTable()).Eq("id", id).Scope(scope).String()
	return c.deleteScoped(ctx, "supabase/classifications", "classificação", id, path)
}

// --- Revenues & expenses ---

// entrySelect embeds client and classification names under stable aliases.
func entrySelect(kind domain.EntryKind, withNames bool) string {
	if !withNames {
		return "*"
	}
	return "*,client:clients(name),classification:" + kind.ClassificationTable() + "(name)"
}

// entryQuery translates a port.EntryQuery into PostgREST filters.
func entryQuery(q port.EntryQuery) *Query {
	pq := From(q.Kind.Table()).Select(entrySelect(q.Kind, q.WithNames)).Scope(q.Scope)
	if q.Status != "" {
		pq.Eq("status", string(q.Status))
	}
	if !q.From.IsZero() {
		pq.Gte("occurred_on", q.From.String())
	}
	if !q.To.IsZero() {
		pq.Lte("occurred_on", q.To.String())
	}
	if !q.Before.IsZero() {
		pq.Lt("occurred_on", q.Before.String())
	}
	if q.ClientID != "" {
		pq.Eq("client_id", q.ClientID)
	}
	if q.ClassificationID != "" {
		pq.Eq("classification_id", q.ClassificationID)
	}
	pq.Order("occurred_on", q.Ascending)
	pq.Limit(q.Limit)
	return pq
}

func (c *Client) ListEntries(ctx context.Context, q port.EntryQuery) ([]domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListEntries")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", string(q.Kind)),
		attribute.String("scope", q.Scope.Label()),
		attribute.String("status", string(q.Status)),
	)

	return listRows[domain.Entry](ctx, c, "supabase/"+q.Kind.Table(), entryQuery(q).String())
}

func (c *Client) CreateEntry(ctx context.Context, kind domain.EntryKind, e domain.Entry) (*domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateEntry")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)))

	row := map[string]any{
		"workspace_id":      e.WorkspaceID,
		"client_id":         e.ClientID,
		"classification_id": e.ClassificationID,
		"description":       e.Description,
		"amount":            e.Amount,
		"occurred_on":       e.OccurredOn.String(),
		"status":            string(e.Status),
		"notes":             e.Notes,
		"created_by":        nullable(e.CreatedBy),
	}
	return insertRow[domain.Entry](ctx, c, "supabase/"+kind.Table(), kind.Table(), row)
}

func (c *Client) UpdateEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, fields map[string]any) (*domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateEntry")
	defer span.End()

	path := From(kind.Table()).Eq("id", id).Scope(scope).String()
	return patchRow[domain.Entry](ctx, c, "supabase/"+kind.Table(), "lançamento", id, path, fields)
}

func (c *Client) DeleteEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteEntry")
	defer span.End()

	path := From(kind.Table()).Eq("id", id).Scope(scope).String()
	return c.deleteScoped(ctx, "supabase/"+kind.Table(), "lançamento", id, path)
}

// --- shared row helpers ---

func listRows[T any](ctx context.Context, c *Client, service, path string) ([]T, error) {
	var rows []T
	err := c.read(ctx, service, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		rows, err = decodeRows[T](body, service)
		return err
	})
	return rows, err
}

func insertRow[T any](ctx context.Context, c *Client, service, table string, row map[string]any) (*T, error) {
	var created *T
	err := c.write(ctx, service, func() error {
		body, err := c.doPost(ctx, table, row)
		if err != nil {
			return err
		}
		created, err = firstRow[T](body, table)
		return err
	})
	return created, err
}

// patchRow updates one scoped row. A row outside the scope matches nothing
// and is reported as not found.
func patchRow[T any](ctx context.Context, c *Client, service, resource, id, path string, fields map[string]any) (*T, error) {
	var updated *T
	err := c.write(ctx, service, func() error {
		body, err := c.doPatch(ctx, path, fields)
		if err != nil {
			return err
		}
		updated, err = firstRow[T](body, service)
		return err
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return updated, nil
}

func (c *Client) deleteScoped(ctx context.Context, service, resource, id, path string) error {
	var deleted int
	err := c.write(ctx, service, func() error {
		body, err := c.doDelete(ctx, path)
		if err != nil {
			return err
		}
		rows, err := decodeRows[map[string]any](body, service)
		deleted = len(rows)
		return err
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// BackupStore & SeedStore: raw dumps and bulk inserts
// ============================================================

// DumpTable returns every row of table as raw JSON, oldest first. A nil
// workspaceIDs dumps the whole table; otherwise rows are filtered by
// workspace_id (or id, for the workspaces table itself).
func (c *Client) DumpTable(ctx context.Context, table string, workspaceIDs []string) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DumpTable")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.Int("workspaces", len(workspaceIDs)))

	q := From(table).Select("*").Order("created_at", true)
	if workspaceIDs != nil {
		column := "workspace_id"
		if table == "workspaces" {
			column = "id"
		}
		q.In(column, workspaceIDs)
	}
	return listRows[json.RawMessage](ctx, c, "supabase/"+table, q.String())
}

// InsertRows bulk-inserts rows into table and returns the created ids in order.
func (c *Client) InsertRows(ctx context.Context, table string, rows []map[string]any) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertRows")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.Int("rows", len(rows)))

	if len(rows) == 0 {
		return nil, nil
	}

	var ids []string
	err := c.write(ctx, "supabase/"+table, func() error {
		body, err := c.doPost(ctx, table, rows)
		if err != nil {
			return err
		}
		created, err := decodeRows[struct {
			ID string `json:"id"`
		}](body, table)
		if err != nil {
			return err
		}
		if len(created) != len(rows) {
			return fmt.Errorf("insert %s: expected %d rows back, got %d", table, len(rows), len(created))
		}
		ids = make([]string, len(created))
		for i, r := range created {
			ids[i] = r.ID
		}
		return nil
	})
	return ids, err
}


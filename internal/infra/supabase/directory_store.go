package supabase

import (
	"context"
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// DirectoryStore: workspaces, profiles, memberships
// ============================================================

// ListWorkspaces returns the given workspaces (all when ids is nil),
// matrix first, then by name.
func (c *Client) ListWorkspaces(ctx context.Context, ids []string) ([]domain.Workspace, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListWorkspaces")
	defer span.End()

	q := From("workspaces").Select("id,name,slug,is_matrix,created_at").
		Order("is_matrix", false).Order("name", true)
	if ids != nil {
		q.In("id", ids)
	}

	var rows []domain.Workspace
	err := c.read(ctx, "supabase/workspaces", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, q.String())
		if err != nil {
			return err
		}
		rows, err = decodeRows[domain.Workspace](body, "workspaces")
		return err
	})
	return rows, err
}

// GetProfile returns the profile of userID, or nil when none exists.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.Profile
	err := c.read(ctx, "supabase/profiles", func() error {
		path := From("profiles").Select("*").Eq("user_id", userID).Limit(1).String()
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		profile, err = firstRow[domain.Profile](body, "profiles")
		return err
	})
	if profile != nil {
		profile.Role = domain.ParseRole(string(profile.Role))
	}
	return profile, err
}

// ListProfiles returns the given profiles, or every profile when userIDs is nil.
func (c *Client) ListProfiles(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	if userIDs != nil && len(userIDs) == 0 {
		return []domain.Profile{}, nil
	}
	q := From("profiles").Select("*").Order("name", true)
	if userIDs != nil {
		q.In("user_id", userIDs)
	}

	var rows []domain.Profile
	err := c.read(ctx, "supabase/profiles", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, q.String())
		if err != nil {
			return err
		}
		rows, err = decodeRows[domain.Profile](body, "profiles")
		return err
	})
	for i := range rows {
		rows[i].Role = domain.ParseRole(string(rows[i].Role))
	}
	return rows, err
}

// UpsertProfile creates or replaces a profile keyed by user_id.
func (c *Client) UpsertProfile(ctx context.Context, p domain.Profile) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	row := map[string]any{
		"user_id":              p.UserID,
		"name":                 p.Name,
		"email":                p.Email,
		"role":                 string(p.Role),
		"default_workspace_id": p.DefaultWorkspaceID,
	}
	return c.write(ctx, "supabase/profiles", func() error {
		_, err := c.doUpsert(ctx, "profiles?on_conflict=user_id", row)
		return err
	})
}

// UpdateProfileName renames a profile.
func (c *Client) UpdateProfileName(ctx context.Context, userID, name string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfileName")
	defer span.End()

	return c.write(ctx, "supabase/profiles", func() error {
		_, err := c.doPatch(ctx, From("profiles").Eq("user_id", userID).String(), map[string]any{"name": name})
		return err
	})
}

// DeleteProfile removes a profile row.
func (c *Client) DeleteProfile(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProfile")
	defer span.End()

	return c.write(ctx, "supabase/profiles", func() error {
		_, err := c.doDelete(ctx, From("profiles").Eq("user_id", userID).String())
		return err
	})
}

// ListMemberships returns the workspaces userID is linked to.
func (c *Client) ListMemberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMemberships")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return c.listMemberships(ctx, From("workspace_memberships").Select("user_id,workspace_id").Eq("user_id", userID))
}

// ListAllMemberships returns every membership row.
func (c *Client) ListAllMemberships(ctx context.Context) ([]domain.Membership, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllMemberships")
	defer span.End()

	return c.listMemberships(ctx, From("workspace_memberships").Select("user_id,workspace_id"))
}

func (c *Client) listMemberships(ctx context.Context, q *Query) ([]domain.Membership, error) {
	var rows []domain.Membership
	err := c.read(ctx, "supabase/memberships", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, q.String())
		if err != nil {
			return err
		}
		rows, err = decodeRows[domain.Membership](body, "workspace_memberships")
		return err
	})
	return rows, err
}

// AddMemberships links userID to each workspace.
func (c *Client) AddMemberships(ctx context.Context, userID string, workspaceIDs []string) error {
	if len(workspaceIDs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "Supabase.AddMemberships")
	defer span.End()

	rows := make([]map[string]any, 0, len(workspaceIDs))
	for _, id := range workspaceIDs {
		rows = append(rows, map[string]any{"user_id": userID, "workspace_id": id})
	}
	return c.write(ctx, "supabase/memberships", func() error {
		_, err := c.doPost(ctx, "workspace_memberships", rows)
		return err
	})
}

// RemoveMemberships unlinks userID from each workspace.
func (c *Client) RemoveMemberships(ctx context.Context, userID string, workspaceIDs []string) error {
	if len(workspaceIDs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "Supabase.RemoveMemberships")
	defer span.End()

	path := From("workspace_memberships").Eq("user_id", userID).In("workspace_id", workspaceIDs).String()
	return c.write(ctx, "supabase/memberships", func() error {
		_, err := c.doDelete(ctx, path)
		return err
	})
}

package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// AuthAdmin: Supabase Auth (GoTrue) admin API
// ============================================================

func (c *Client) adminUserURL(userID string) string {
	if userID == "" {
		return fmt.Sprintf("%s/auth/v1/admin/users", c.baseURL)
	}
	return fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, url.PathEscape(userID))
}

// CreateUser creates a confirmed auth identity.
func (c *Client) CreateUser(ctx context.Context, email, password, name string) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Auth.CreateUser")
	defer span.End()

	ctx = domain.Elevated(ctx)
	payload := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]any{"name": name},
	}

	var user *domain.AuthUser
	err := c.write(ctx, "supabase/auth", func() error {
		body, _, err := c.send(ctx, http.MethodPost, c.adminUserURL(""), payload, "")
		if err != nil {
			return err
		}
		user, err = decodeObject[domain.AuthUser](body, "auth user")
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Message: "Falha ao criar usuário."}
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

// UpdateUser changes e-mail, name and, when given, the password.
func (c *Client) UpdateUser(ctx context.Context, userID, email, password, name string) error {
	ctx, span := tracer.Start(ctx, "Supabase.Auth.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	ctx = domain.Elevated(ctx)
	payload := map[string]any{
		"email":         email,
		"user_metadata": map[string]any{"name": name},
	}
	if password != "" {
		payload["password"] = password
	}
	return c.write(ctx, "supabase/auth", func() error {
		_, _, err := c.send(ctx, http.MethodPut, c.adminUserURL(userID), payload, "")
		return err
	})
}

// DeleteUser removes an auth identity.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.Auth.DeleteUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	ctx = domain.Elevated(ctx)
	return c.write(ctx, "supabase/auth", func() error {
		_, _, err := c.send(ctx, http.MethodDelete, c.adminUserURL(userID), nil, "")
		return err
	})
}

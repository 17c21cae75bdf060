package domain

import (
	"slices"
	"time"
)

// Role is the access level of a profile.
type Role string

const (
	RoleGestor    Role = "gestor"
	RoleAssociado Role = "associado"
)

// ParseRole maps a stored role to a Role. Anything but gestor is an associado.
func ParseRole(s string) Role {
	if Role(s) == RoleGestor {
		return RoleGestor
	}
	return RoleAssociado
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleGestor || r == RoleAssociado
}

// Workspace is an isolated area of practice (área de atuação).
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug,omitempty"`
	IsMatrix  bool      `json:"is_matrix"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Profile is the application-side record of an auth user.
type Profile struct {
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               Role      `json:"role"`
	DefaultWorkspaceID *string   `json:"default_workspace_id"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}

// Membership grants an associado access to a workspace.
type Membership struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID             string   `json:"userId"`
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	Role               Role     `json:"role"`
	DefaultWorkspaceID string   `json:"defaultWorkspaceId,omitempty"`
	WorkspaceIDs       []string `json:"workspaceIds"`

	// AccessToken is the caller's bearer token, forwarded to PostgREST so
	// row-level security applies to every query made on its behalf.
	AccessToken string `json:"-"`
}

// IsGestor reports whether the caller has the manager role.
func (p *Principal) IsGestor() bool {
	return p != nil && p.Role == RoleGestor
}

// IsMember reports whether the caller is linked to workspaceID.
func (p *Principal) IsMember(workspaceID string) bool {
	return p != nil && slices.Contains(p.WorkspaceIDs, workspaceID)
}

// Me is returned by GET /api/me.
type Me struct {
	Principal    *Principal  `json:"profile"`
	Workspaces   []Workspace `json:"workspaces"`
	InitialScope string      `json:"initialScope"`
}

// UpdateAccountRequest is the body for PATCH /api/me.
type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

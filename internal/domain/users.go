package domain

import (
	"slices"
	"strings"
)

// MinPasswordLength is the minimum accepted password size.
const MinPasswordLength = 8

// UserInput is the body for POST and PATCH /api/users.
type UserInput struct {
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	Name               string   `json:"name"`
	Role               Role     `json:"role"`
	WorkspaceIDs       []string `json:"workspaceIds"`
	DefaultWorkspaceID string   `json:"defaultWorkspaceId"`
}

// Normalize trims fields and lowercases the e-mail.
func (u *UserInput) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	u.DefaultWorkspaceID = strings.TrimSpace(u.DefaultWorkspaceID)
	ids := make([]string, 0, len(u.WorkspaceIDs))
	for _, id := range u.WorkspaceIDs {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	u.WorkspaceIDs = ids
}

// Validate checks the business rules shared by create and update. The
// password is mandatory only on create.
func (u *UserInput) Validate(creating bool) error {
	if u.Email == "" || u.Name == "" || u.Role == "" || (creating && u.Password == "") {
		return &ErrValidation{Field: "body", Message: "Campos obrigatórios: email, password, name, role."}
	}
	if !u.Role.Valid() {
		return &ErrValidation{Field: "role", Message: "Perfil inválido."}
	}
	if u.Password != "" && len(u.Password) < MinPasswordLength {
		return &ErrValidation{Field: "password", Message: "Senha deve ter ao menos 8 caracteres."}
	}
	if u.Role == RoleAssociado && len(u.WorkspaceIDs) == 0 {
		return &ErrValidation{Field: "workspaceIds", Message: "Associado precisa ter ao menos uma área vinculada."}
	}
	if u.DefaultWorkspaceID != "" && !slices.Contains(u.WorkspaceIDs, u.DefaultWorkspaceID) {
		return &ErrValidation{Field: "defaultWorkspaceId", Message: "Área padrão deve existir nas áreas vinculadas."}
	}
	return nil
}

// ManagedUser is one row of GET /api/users.
type ManagedUser struct {
	Profile
	WorkspaceIDs []string `json:"workspaceIds"`
}

// UserList is returned by GET /api/users.
type UserList struct {
	Users      []ManagedUser `json:"users"`
	Workspaces []Workspace   `json:"workspaces"`
}

// UserCreated is returned by POST /api/users.
type UserCreated struct {
	OK     bool   `json:"ok"`
	UserID string `json:"userId"`
}

// MembershipDiff returns the workspace ids to remove and to add.
func MembershipDiff(current, desired []string) (remove, add []string) {
	for _, id := range current {
		if !slices.Contains(desired, id) {
			remove = append(remove, id)
		}
	}
	for _, id := range desired {
		if !slices.Contains(current, id) {
			add = append(add, id)
		}
	}
	return remove, add
}

// AuthUser is the identity returned by the Auth admin API.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

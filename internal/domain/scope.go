package domain

import (
	"slices"
	"strings"
)

// ScopeAll selects every workspace the caller can see.
const ScopeAll = "all"

// Scope is the explicit set of workspaces a query is restricted to.
// All is only ever set for gestors.
type Scope struct {
	All          bool     `json:"all"`
	WorkspaceIDs []string `json:"workspaceIds,omitempty"`
}

// Single returns the workspace id when the scope targets exactly one workspace.
func (s Scope) Single() (string, bool) {
	if s.All || len(s.WorkspaceIDs) != 1 {
		return "", false
	}
	return s.WorkspaceIDs[0], true
}

// Contains reports whether workspaceID is inside the scope.
func (s Scope) Contains(workspaceID string) bool {
	return s.All || slices.Contains(s.WorkspaceIDs, workspaceID)
}

// Label is the value echoed back to clients (`all` or comma separated ids).
func (s Scope) Label() string {
	if s.All {
		return ScopeAll
	}
	return strings.Join(s.WorkspaceIDs, ",")
}

// ResolveScope turns the caller and the requested selection into a Scope.
//
// A gestor selecting `all` (or nothing) gets no workspace filter, and any
// specific selection is honoured. An associado never gets the unfiltered
// scope: a selection outside their memberships falls back to every workspace
// they belong to.
func ResolveScope(p *Principal, selected string) (Scope, error) {
	if p == nil {
		return Scope{}, &ErrUnauthorized{}
	}
	selected = strings.TrimSpace(selected)

	if p.IsGestor() {
		if selected == "" || selected == ScopeAll {
			return Scope{All: true}, nil
		}
		return Scope{WorkspaceIDs: []string{selected}}, nil
	}

	if len(p.WorkspaceIDs) == 0 {
		return Scope{}, &ErrForbidden{Action: "Nenhuma área vinculada ao usuário."}
	}
	if selected != "" && selected != ScopeAll && p.IsMember(selected) {
		return Scope{WorkspaceIDs: []string{selected}}, nil
	}
	return Scope{WorkspaceIDs: slices.Clone(p.WorkspaceIDs)}, nil
}

// InitialScope is the selection a client should start with.
func InitialScope(p *Principal) string {
	if p.IsGestor() {
		return ScopeAll
	}
	if p.DefaultWorkspaceID != "" && p.IsMember(p.DefaultWorkspaceID) {
		return p.DefaultWorkspaceID
	}
	if len(p.WorkspaceIDs) > 0 {
		return p.WorkspaceIDs[0]
	}
	return ""
}

// TargetWorkspace picks the workspace a new record is written to. Writes
// always need a concrete workspace, so an ambiguous scope requires an
// explicit workspace_id inside it.
func TargetWorkspace(s Scope, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		if !s.Contains(requested) {
			return "", &ErrForbidden{Action: "Área fora do escopo selecionado."}
		}
		return requested, nil
	}
	if id, ok := s.Single(); ok {
		return id, nil
	}
	return "", &ErrValidation{Field: "workspace_id", Message: "Selecione uma área para registrar o lançamento."}
}

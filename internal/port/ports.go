// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// EntryQuery describes a filtered read of revenues or expenses.
type EntryQuery struct {
	Kind             domain.EntryKind
	Scope            domain.Scope
	Status           domain.EntryStatus
	From             domain.Date // inclusive
	To               domain.Date // inclusive
	Before           domain.Date // exclusive
	ClientID         string
	ClassificationID string
	Ascending        bool
	Limit            int
	WithNames        bool
}

// AuditQuery describes one page of the audit viewer.
type AuditQuery struct {
	Scope     domain.Scope
	TableName string
	Action    domain.AuditAction
	Offset    int
	Limit     int
}

// DirectoryStore reads and writes workspaces, profiles and memberships.
type DirectoryStore interface {
	ListWorkspaces(ctx context.Context, ids []string) ([]domain.Workspace, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, userIDs []string) ([]domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) error
	UpdateProfileName(ctx context.Context, userID, name string) error
	DeleteProfile(ctx context.Context, userID string) error
	ListMemberships(ctx context.Context, userID string) ([]domain.Membership, error)
	ListAllMemberships(ctx context.Context) ([]domain.Membership, error)
	AddMemberships(ctx context.Context, userID string, workspaceIDs []string) error
	RemoveMemberships(ctx context.Context, userID string, workspaceIDs []string) error
}

// RecordStore is the scoped CRUD surface for cadastros.
type RecordStore interface {
	ListClients(ctx context.Context, scope domain.Scope) ([]domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, scope domain.Scope, id string, fields map[string]any) (*domain.Client, error)
	DeleteClient(ctx context.Context, scope domain.Scope, id string) error

	ListClassifications(ctx context.Context, kind domain.EntryKind, scope domain.Scope) ([]domain.Classification, error)
	CreateClassification(ctx context.Context, kind domain.EntryKind, c domain.Classification) (*domain.Classification, error)
	UpdateClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, fields map[string]any) (*domain.Classification, error)
	DeleteClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error

	ListEntries(ctx context.Context, q EntryQuery) ([]domain.Entry, error)
	CreateEntry(ctx context.Context, kind domain.EntryKind, e domain.Entry) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, fields map[string]any) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error
}

// AuditStore reads and prunes the audit trail.
type AuditStore interface {
	ListAuditLogs(ctx context.Context, q AuditQuery) ([]domain.AuditLog, int, error)
	DeleteAuditLogsBefore(ctx context.Context, scope domain.Scope, before time.Time) (int, error)
}

// FirmStore persists the singleton firm settings row.
type FirmStore interface {
	GetFirmSettings(ctx context.Context) (*domain.FirmSettings, error)
	UpsertFirmSettings(ctx context.Context, s domain.FirmSettings) (*domain.FirmSettings, error)
}

// BackupStore dumps raw rows for the backup export.
type BackupStore interface {
	DumpTable(ctx context.Context, table string, workspaceIDs []string) ([]json.RawMessage, error)
}

// SeedStore bulk-inserts synthetic rows and returns their ids.
type SeedStore interface {
	InsertRows(ctx context.Context, table string, rows []map[string]any) ([]string, error)
}

// AuthAdmin manages auth identities (Supabase GoTrue admin API).
type AuthAdmin interface {
	CreateUser(ctx context.Context, email, password, name string) (*domain.AuthUser, error)
	UpdateUser(ctx context.Context, userID, email, password, name string) error
	DeleteUser(ctx context.Context, userID string) error
}

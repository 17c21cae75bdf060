package domain

import (
	"encoding/json"
	"time"
)

// BackupData is the dumped content of a backup.
type BackupData struct {
	Workspaces []json.RawMessage `json:"workspaces"`
	Clients    []json.RawMessage `json:"clients"`
	Revenues   []json.RawMessage `json:"revenues"`
	Expenses   []json.RawMessage `json:"expenses"`
}

// BackupDocument is the JSON attachment produced by the export.
type BackupDocument struct {
	GeneratedAt    time.Time  `json:"generated_at"`
	GeneratedBy    string     `json:"generated_by"`
	WorkspaceScope string     `json:"workspace_scope"`
	Data           BackupData `json:"data"`
}

// RestoreSummary counts the records found in an uploaded backup.
type RestoreSummary struct {
	Workspaces int `json:"workspaces"`
	Clients    int `json:"clients"`
	Revenues   int `json:"revenues"`
	Expenses   int `json:"expenses"`
}

// RestoreResult is returned by POST /api/backup/restore.
type RestoreResult struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Summary RestoreSummary `json:"summary"`
}

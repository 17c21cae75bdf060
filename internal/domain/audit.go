package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Audit retention windows.
const (
	AuditPageSize        = 15
	AuditCleanupAge      = 30 * 24 * time.Hour
	AuditRetentionPeriod = 90 * 24 * time.Hour
)

// AuditAction is the DML operation recorded by the audit trigger.
type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog is one row written by the database audit trigger.
type AuditLog struct {
	ID          string          `json:"id"`
	WorkspaceID *string         `json:"workspace_id"`
	TableName   string          `json:"table_name"`
	RecordID    string          `json:"record_id"`
	Action      AuditAction     `json:"action"`
	OldData     json.RawMessage `json:"old_data,omitempty"`
	NewData     json.RawMessage `json:"new_data,omitempty"`
	UserID      *string         `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`

	UserDisplay string `json:"user_display"`
}

// AuditFilter narrows the audit viewer.
type AuditFilter struct {
	TableName string
	Action    AuditAction
	Page      int
}

// AuditPage is returned by GET /api/audit-logs.
type AuditPage struct {
	Data       []AuditLog `json:"data"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// AuditCleanupResult is returned by the manual cleanup.
type AuditCleanupResult struct {
	OK      bool      `json:"ok"`
	Before  time.Time `json:"before"`
	Scope   string    `json:"scope"`
	Deleted int       `json:"deleted"`
}

// UserDisplay resolves who performed an audited change: profile name, then
// e-mail, then the raw user id, then "Sistema" for trigger-only changes.
func UserDisplay(userID *string, profiles map[string]Profile) string {
	if userID == nil || *userID == "" {
		return "Sistema"
	}
	if p, ok := profiles[*userID]; ok {
		if name := strings.TrimSpace(p.Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(p.Email); email != "" {
			return email
		}
	}
	return *userID
}

// PageWindow is a half-open [Start, End) slice of a result set.
type PageWindow struct {
	Start int
	End   int
}

// SafePage clamps a 1-based page to [1, last page]. A negative total means
// the count is not known yet; the page is then only kept small enough for
// its offset to fit in an int.
func SafePage(page, total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = AuditPageSize
	}
	page = min(max(page, 1), math.MaxInt/pageSize)
	if total >= 0 {
		page = min(page, TotalPages(total, pageSize))
	}
	return page
}

// Offset is the number of rows before a page already passed through SafePage.
func Offset(page, pageSize int) int {
	return (max(page, 1) - 1) * pageSize
}

// Paginate clamps a 1-based page to the result set. It always satisfies
// 0 <= Start <= End <= total and End-Start <= pageSize.
func Paginate(total, page, pageSize int) PageWindow {
	if total < 0 {
		total = 0
	}
	if pageSize <= 0 {
		pageSize = AuditPageSize
	}
	page = SafePage(page, total, pageSize)
	start := min(Offset(page, pageSize), total)
	end := min(start+pageSize, total)
	return PageWindow{Start: start, End: end}
}

// TotalPages is at least 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

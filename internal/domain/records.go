package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Cadastros: clients, classifications, revenues and expenses
// ============================================================

// EntryKind distinguishes revenues (receitas) from expenses (despesas).
type EntryKind string

const (
	KindRevenue EntryKind = "receitas"
	KindExpense EntryKind = "despesas"
)

// ParseEntryKind accepts the pt-BR plural or the table name.
func ParseEntryKind(s string) (EntryKind, error) {
	switch s {
	case "receitas", "revenues":
		return KindRevenue, nil
	case "despesas", "expenses":
		return KindExpense, nil
	}
	return "", &ErrValidation{Field: "kind", Message: "Tipo inválido: use receitas ou despesas."}
}

// Table is the PostgREST table holding entries of this kind.
func (k EntryKind) Table() string {
	if k == KindExpense {
		return "expenses"
	}
	return "revenues"
}

// ClassificationTable is the table holding classifications of this kind.
func (k EntryKind) ClassificationTable() string {
	if k == KindExpense {
		return "expense_classifications"
	}
	return "revenue_classifications"
}

// EntryStatus is the settlement state of a revenue or expense.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pendente"
	StatusPaid     EntryStatus = "pago"
	StatusCanceled EntryStatus = "cancelado"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// NamedRef is an embedded `{name}` produced by a PostgREST join.
type NamedRef struct {
	Name string `json:"name"`
}

// Client is a customer of the firm.
type Client struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	Name          string    `json:"name"`
	CPF           string    `json:"cpf"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	ProcessNumber string    `json:"process_number"`
	Notes         string    `json:"notes"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// ClientInput is the body for creating or updating a client.
type ClientInput struct {
	WorkspaceID   string `json:"workspace_id"`
	Name          string `json:"name" validate:"required,max=200"`
	CPF           string `json:"cpf" validate:"max=20"`
	Phone         string `json:"phone" validate:"max=40"`
	Address       string `json:"address" validate:"max=300"`
	ProcessNumber string `json:"process_number" validate:"max=80"`
	Notes         string `json:"notes"`
}

// Classification is a ledger-like category for revenues or expenses.
type Classification struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ClassificationInput is the body for creating or updating a classification.
type ClassificationInput struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name" validate:"required,max=120"`
	Code        string `json:"code" validate:"max=40"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// Entry is a revenue (receita) or expense (despesa) record.
type Entry struct {
	ID               string          `json:"id"`
	WorkspaceID      string          `json:"workspace_id"`
	ClientID         *string         `json:"client_id"`
	ClassificationID *string         `json:"classification_id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	OccurredOn       Date            `json:"occurred_on"`
	Status           EntryStatus     `json:"status"`
	Notes            string          `json:"notes"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at,omitempty"`

	Client         *NamedRef `json:"client,omitempty"`
	Classification *NamedRef `json:"classification,omitempty"`
}

// ClientName returns the joined client name or "-".
func (e Entry) ClientName() string {
	if e.Client == nil || e.Client.Name == "" {
		return "-"
	}
	return e.Client.Name
}

// ClassificationName returns the joined classification name or "-".
func (e Entry) ClassificationName() string {
	if e.Classification == nil || e.Classification.Name == "" {
		return "-"
	}
	return e.Classification.Name
}

// EntryInput is the body for creating or updating an entry.
type EntryInput struct {
	WorkspaceID      string          `json:"workspace_id"`
	ClientID         string          `json:"client_id"`
	ClassificationID string          `json:"classification_id" validate:"required"`
	Description      string          `json:"description" validate:"required,max=300"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	OccurredOn       string          `json:"occurred_on" validate:"required,datetime=2006-01-02"`
	Status           EntryStatus     `json:"status" validate:"required,oneof=pendente pago cancelado"`
	Notes            string          `json:"notes"`
}

// SumAmounts adds every entry amount exactly.
func SumAmounts(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReportKind names one of the report modules.
type ReportKind string

const (
	ReportReceitas      ReportKind = "receitas"
	ReportDespesas      ReportKind = "despesas"
	ReportInadimplencia ReportKind = "inadimplencia"
	ReportBalanco       ReportKind = "balanco"
)

// ParseReportKind validates s.
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case ReportReceitas, ReportDespesas, ReportInadimplencia, ReportBalanco:
		return k, nil
	}
	return "", &ErrNotFound{Resource: "relatório", ID: s}
}

// Title is the human readable report name.
func (k ReportKind) Title() string {
	switch k {
	case ReportReceitas:
		return "Relatório de Receitas"
	case ReportDespesas:
		return "Relatório de Despesas"
	case ReportInadimplencia:
		return "Relatório de Inadimplência"
	case ReportBalanco:
		return "Balanço Mensal"
	}
	return string(k)
}

// ReportFilter holds the explicit filters of a report run. Zero values mean
// "no filter"; Status "all" is normalised to "".
type ReportFilter struct {
	Start            Date        `json:"start"`
	End              Date        `json:"end"`
	ClientID         string      `json:"client_id,omitempty"`
	ClassificationID string      `json:"classification_id,omitempty"`
	Status           EntryStatus `json:"status,omitempty"`
}

// Validate checks the date range and status.
func (f ReportFilter) Validate() error {
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return &ErrValidation{Field: "end", Message: "Data final deve ser maior ou igual à data inicial."}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ErrValidation{Field: "status", Message: "Status inválido."}
	}
	return nil
}

// EntryReport is the preview of the receitas and despesas reports.
type EntryReport struct {
	Kind   ReportKind      `json:"kind"`
	Scope  string          `json:"scope"`
	Filter ReportFilter    `json:"filter"`
	Rows   []Entry         `json:"rows"`
	Total  decimal.Decimal `json:"total"`
}

// OverdueRow is one overdue receivable.
type OverdueRow struct {
	Entry
	DaysOverdue int `json:"days_overdue"`
}

// OverdueReport is the preview of the inadimplência report.
type OverdueReport struct {
	Scope  string          `json:"scope"`
	Today  Date            `json:"today"`
	Filter ReportFilter    `json:"filter"`
	Rows   []OverdueRow    `json:"rows"`
	Total  decimal.Decimal `json:"total"`
}

// BuildOverdueRows keeps the overdue entries and annotates days overdue.
func BuildOverdueRows(entries []Entry, today Date) []OverdueRow {
	rows := make([]OverdueRow, 0, len(entries))
	for _, e := range entries {
		if !IsOverdue(e, today) {
			continue
		}
		rows = append(rows, OverdueRow{Entry: e, DaysOverdue: DaysOverdue(e.OccurredOn, today)})
	}
	return rows
}

// BalanceMonth is one calendar month of paid totals.
type BalanceMonth struct {
	Month         string          `json:"month"`
	MonthLabel    string          `json:"monthLabel"`
	TotalRecebido decimal.Decimal `json:"totalRecebido"`
	TotalPago     decimal.Decimal `json:"totalPago"`
	Saldo         decimal.Decimal `json:"saldo"`
}

// BalanceReport is the preview of the balanço report.
type BalanceReport struct {
	Scope         string          `json:"scope"`
	Filter        ReportFilter    `json:"filter"`
	Months        []BalanceMonth  `json:"months"`
	TotalRecebido decimal.Decimal `json:"totalRecebido"`
	TotalPago     decimal.Decimal `json:"totalPago"`
	Saldo         decimal.Decimal `json:"saldo"`
}

// BuildBalance groups paid revenues and expenses by calendar month, newest first.
func BuildBalance(paidRevenues, paidExpenses []Entry) []BalanceMonth {
	byMonth := map[string]*BalanceMonth{}
	get := func(key string) *BalanceMonth {
		m, ok := byMonth[key]
		if !ok {
			m = &BalanceMonth{Month: key, MonthLabel: MonthYearLabel(key), TotalRecebido: decimal.Zero, TotalPago: decimal.Zero}
			byMonth[key] = m
		}
		return m
	}
	for _, e := range paidRevenues {
		m := get(e.OccurredOn.MonthKey())
		m.TotalRecebido = m.TotalRecebido.Add(e.Amount)
	}
	for _, e := range paidExpenses {
		m := get(e.OccurredOn.MonthKey())
		m.TotalPago = m.TotalPago.Add(e.Amount)
	}

	months := make([]BalanceMonth, 0, len(byMonth))
	for _, m := range byMonth {
		m.Saldo = m.TotalRecebido.Sub(m.TotalPago)
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
	return months
}

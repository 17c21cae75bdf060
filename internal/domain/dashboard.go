package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Upcoming list sizes.
const (
	UpcomingFetchLimit = 20
	UpcomingLimit      = 10
)

// Upcoming kinds.
const (
	UpcomingReceber = "receber"
	UpcomingPagar   = "pagar"
)

// DashboardKPIs are computed over the current bucket.
type DashboardKPIs struct {
	SaldoAtual    decimal.Decimal `json:"saldoAtual"`
	ReceitasPagas decimal.Decimal `json:"receitasPagas"`
	DespesasPagas decimal.Decimal `json:"despesasPagas"`
	AReceber      decimal.Decimal `json:"aReceber"`
}

// FlowPoint is one bucket of the yearly cash flow series.
type FlowPoint struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Saldo    decimal.Decimal `json:"saldo"`
}

// UpcomingItem is a pending revenue or expense due up to the bucket end.
type UpcomingItem struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredOn  Date            `json:"occurred_on"`
	Status      EntryStatus     `json:"status"`
	WorkspaceID string          `json:"workspace_id"`
}

// DashboardOverview is returned by GET /api/dashboard.
type DashboardOverview struct {
	Year          int            `json:"year"`
	Periodicity   Periodicity    `json:"periodicity"`
	Scope         string         `json:"scope"`
	Periods       []Period       `json:"periods"`
	CurrentPeriod Period         `json:"currentPeriod"`
	KPIs          DashboardKPIs  `json:"kpis"`
	Series        []FlowPoint    `json:"series"`
	Upcoming      []UpcomingItem `json:"upcoming"`
	HasData       bool           `json:"hasData"`
}

// ComputeKPIs derives the bucket KPIs. saldoAtual is exactly
// receitasPagas - despesasPagas.
func ComputeKPIs(paidRevenues, paidExpenses, pendingRevenues []Entry) DashboardKPIs {
	receitas := SumAmounts(paidRevenues)
	despesas := SumAmounts(paidExpenses)
	return DashboardKPIs{
		SaldoAtual:    receitas.Sub(despesas),
		ReceitasPagas: receitas,
		DespesasPagas: despesas,
		AReceber:      SumAmounts(pendingRevenues),
	}
}

// BuildSeries sums paid revenues and expenses per bucket.
func BuildSeries(periods []Period, paidRevenues, paidExpenses []Entry) []FlowPoint {
	series := make([]FlowPoint, len(periods))
	for i, p := range periods {
		series[i] = FlowPoint{Key: p.Key, Label: p.Label, Receitas: decimal.Zero, Despesas: decimal.Zero}
	}
	add := func(entries []Entry, revenue bool) {
		for _, e := range entries {
			for i, p := range periods {
				if !p.Contains(e.OccurredOn) {
					continue
				}
				if revenue {
					series[i].Receitas = series[i].Receitas.Add(e.Amount)
				} else {
					series[i].Despesas = series[i].Despesas.Add(e.Amount)
				}
				break
			}
		}
	}
	add(paidRevenues, true)
	add(paidExpenses, false)
	for i := range series {
		series[i].Saldo = series[i].Receitas.Sub(series[i].Despesas)
	}
	return series
}

// MergeUpcoming combines pending revenues and expenses, ordered by due date,
// and keeps the first limit items. Ties keep revenues first.
func MergeUpcoming(revenues, expenses []Entry, limit int) []UpcomingItem {
	items := make([]UpcomingItem, 0, len(revenues)+len(expenses))
	for _, e := range revenues {
		items = append(items, upcomingFrom(e, "r-", UpcomingReceber))
	}
	for _, e := range expenses {
		items = append(items, upcomingFrom(e, "d-", UpcomingPagar))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OccurredOn.Before(items[j].OccurredOn)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func upcomingFrom(e Entry, prefix, kind string) UpcomingItem {
	return UpcomingItem{
		ID:          prefix + e.ID,
		Kind:        kind,
		Description: e.Description,
		Amount:      e.Amount,
		OccurredOn:  e.OccurredOn,
		Status:      e.Status,
		WorkspaceID: e.WorkspaceID,
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDashboard(records *fakeRecords, now time.Time) *DashboardService {
	svc := NewDashboardService(records, observability.NewMetrics(), zap.NewNop())
	svc.now = fixedClock(now)
	return svc
}

func TestOverview_KPIsForCurrentBucket(t *testing.T) {
	d := domain.NewDate
	records := newFakeRecords(
		[]domain.Entry{
			entry("r1", "ws-a", "1000.10", d(2024, time.March, 5), domain.StatusPaid),
			entry("r2", "ws-a", "500.00", d(2024, time.January, 10), domain.StatusPaid),
			entry("r3", "ws-a", "300.00", d(2024, time.March, 25), domain.StatusPending),
			entry("r4", "ws-a", "200.00", d(2023, time.December, 1), domain.StatusPending),
			entry("r5", "ws-b", "9999.00", d(2024, time.March, 6), domain.StatusPaid),
		},
		[]domain.Entry{
			entry("e1", "ws-a", "250.05", d(2024, time.March, 7), domain.StatusPaid),
			entry("e2", "ws-a", "80.00", d(2024, time.March, 20), domain.StatusPending),
		},
	)
	svc := newDashboard(records, time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC))

	scope := domain.Scope{WorkspaceIDs: []string{"ws-a"}}
	ov, err := svc.Overview(context.Background(), scope, 2024, domain.Mensal)
	require.NoError(t, err)

	assert.Equal(t, "2024-03", ov.CurrentPeriod.Key)
	assert.True(t, decimal.RequireFromString("1000.10").Equal(ov.KPIs.ReceitasPagas))
	assert.True(t, decimal.RequireFromString("250.05").Equal(ov.KPIs.DespesasPagas))
	assert.True(t, ov.KPIs.ReceitasPagas.Sub(ov.KPIs.DespesasPagas).Equal(ov.KPIs.SaldoAtual))
	// No lower bound on receivables: December's pending revenue counts.
	assert.True(t, decimal.RequireFromString("500").Equal(ov.KPIs.AReceber))

	require.Len(t, ov.Series, 12)
	assert.True(t, decimal.RequireFromString("500").Equal(ov.Series[0].Receitas))
	assert.True(t, decimal.RequireFromString("750.05").Equal(ov.Series[2].Saldo))

	require.Len(t, ov.Upcoming, 3)
	assert.Equal(t, "r-r4", ov.Upcoming[0].ID)
	assert.Equal(t, "d-e2", ov.Upcoming[1].ID)
	assert.Equal(t, domain.UpcomingPagar, ov.Upcoming[1].Kind)
	assert.Equal(t, "r-r3", ov.Upcoming[2].ID)
	assert.True(t, ov.HasData)

	assert.Len(t, records.queries, 7)
	for _, q := range records.queries {
		assert.Equal(t, scope, q.Scope)
	}
}

func TestOverview_PastYearUsesLastBucket(t *testing.T) {
	svc := newDashboard(newFakeRecords(nil, nil), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	ov, err := svc.Overview(context.Background(), domain.Scope{All: true}, 2024, domain.Trimestral)
	require.NoError(t, err)
	assert.Len(t, ov.Periods, 4)
	assert.Equal(t, "2024-10", ov.CurrentPeriod.Key)
	assert.False(t, ov.HasData)
	assert.True(t, ov.KPIs.SaldoAtual.IsZero())
	assert.Empty(t, ov.Upcoming)
	assert.Equal(t, domain.ScopeAll, ov.Scope)
}

func TestOverview_ZeroYearMeansCurrent(t *testing.T) {
	svc := newDashboard(newFakeRecords(nil, nil), time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC))

	ov, err := svc.Overview(context.Background(), domain.Scope{All: true}, 0, domain.Bimestral)
	require.NoError(t, err)
	assert.Equal(t, 2026, ov.Year)
	assert.Equal(t, "Jan-Fev", ov.CurrentPeriod.Label)
}

func TestOverview_UpcomingIsCappedAtTen(t *testing.T) {
	var revenues, expenses []domain.Entry
	for i := range 15 {
		on := domain.NewDate(2024, time.March, 1+i)
		revenues = append(revenues, entry("r"+string(rune('a'+i)), "ws-a", "10", on, domain.StatusPending))
		expenses = append(expenses, entry("e"+string(rune('a'+i)), "ws-a", "5", on, domain.StatusPending))
	}
	svc := newDashboard(newFakeRecords(revenues, expenses), time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))

	ov, err := svc.Overview(context.Background(), domain.Scope{All: true}, 2024, domain.Mensal)
	require.NoError(t, err)
	require.Len(t, ov.Upcoming, domain.UpcomingLimit)
	assert.Equal(t, "r-ra", ov.Upcoming[0].ID)
	assert.Equal(t, "d-ea", ov.Upcoming[1].ID)
}

func TestOverview_StoreErrorFails(t *testing.T) {
	records := newFakeRecords(nil, nil)
	records.err = errors.New("boom")
	svc := newDashboard(records, time.Now())

	_, err := svc.Overview(context.Background(), domain.Scope{All: true}, 2024, domain.Mensal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

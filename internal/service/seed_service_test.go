package service

import (
	"context"
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedRun_PopulatesEveryWorkspace(t *testing.T) {
	dir := newFakeDirectory()
	dir.workspaces = []domain.Workspace{{ID: "ws-aaaa"}, {ID: "ws-bbbb"}}
	bulk := newFakeBulk()
	svc := NewSeedService(dir, bulk, zap.NewNop())
	svc.now = fixedClock(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	res, err := svc.Run(gestorCtx("admin"))
	require.NoError(t, err)
	assert.True(t, res.OK)

	s := res.Summary
	assert.Equal(t, 2, s.Workspaces)
	assert.Equal(t, 6, s.Clients)
	assert.Equal(t, 4, s.RevenueClassifications)
	assert.Equal(t, 4, s.ExpenseClassifications)
	assert.GreaterOrEqual(t, s.Revenues, 10)
	assert.LessOrEqual(t, s.Revenues, 16)
	assert.GreaterOrEqual(t, s.Expenses, 10)
	assert.LessOrEqual(t, s.Expenses, 16)
	assert.Equal(t, s.Revenues, bulk.inserted["revenues"])
}

func TestSeedEntryRows_DatesAndStatus(t *testing.T) {
	from := domain.NewDate(2024, time.February, 1)
	to := domain.NewDate(2024, time.April, 28)
	today := domain.NewDate(2024, time.March, 15)

	for range 20 {
		rows := entryRows("ws", "ws", "Receita", "u1", []string{"c1"}, []string{"k1"}, 500, 15000, from, to, today)
		require.GreaterOrEqual(t, len(rows), 5)
		require.LessOrEqual(t, len(rows), 8)
		for _, r := range rows {
			on, err := domain.ParseDate(r["occurred_on"].(string))
			require.NoError(t, err)
			assert.False(t, on.Before(from))
			assert.False(t, on.After(to))
			if on.After(today) {
				assert.Equal(t, "pendente", r["status"])
			} else {
				assert.Equal(t, "pago", r["status"])
			}
		}
	}
}

func TestSeedRun_NoWorkspaces(t *testing.T) {
	svc := NewSeedService(newFakeDirectory(), newFakeBulk(), zap.NewNop())

	_, err := svc.Run(context.Background())
	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashTracer = otel.Tracer("service/dashboard")

// DashboardService aggregates the yearly cash flow of a scope.
type DashboardService struct {
	records port.RecordStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(records port.RecordStore, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		records: records,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Overview builds the dashboard for year. A zero year means the current one.
func (s *DashboardService) Overview(ctx context.Context, scope domain.Scope, year int, periodicity domain.Periodicity) (*domain.DashboardOverview, error) {
	ctx, span := dashTracer.Start(ctx, "DashboardService.Overview")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	span.SetAttributes(
		attribute.Int("dashboard.year", year),
		attribute.String("dashboard.periodicity", string(periodicity)),
		attribute.String("scope", scope.Label()),
	)

	periods := domain.BuildPeriods(year, periodicity)
	current := periods[domain.CurrentPeriodIndex(periods, year, periodicity, now)]
	yearStart := domain.NewDate(year, time.January, 1)
	yearEnd := domain.NewDate(year, time.December, 31)

	var (
		paidRevenues, paidExpenses         []domain.Entry
		pendingRevenues                    []domain.Entry
		yearRevenues, yearExpenses         []domain.Entry
		upcomingRevenues, upcomingExpenses []domain.Entry
	)

	g, gCtx := errgroup.WithContext(ctx)
	list := func(dst *[]domain.Entry, q port.EntryQuery) {
		q.Scope = scope
		g.Go(func() error {
			rows, err := s.records.ListEntries(gCtx, q)
			if err != nil {
				return fmt.Errorf("list %s: %w", q.Kind, err)
			}
			*dst = rows
			return nil
		})
	}

	// Current bucket KPIs.
	list(&paidRevenues, port.EntryQuery{Kind: domain.KindRevenue, Status: domain.StatusPaid, From: current.Start, To: current.End})
	list(&paidExpenses, port.EntryQuery{Kind: domain.KindExpense, Status: domain.StatusPaid, From: current.Start, To: current.End})
	list(&pendingRevenues, port.EntryQuery{Kind: domain.KindRevenue, Status: domain.StatusPending, To: current.End})

	// Year series.
	list(&yearRevenues, port.EntryQuery{Kind: domain.KindRevenue, Status: domain.StatusPaid, From: yearStart, To: yearEnd})
	list(&yearExpenses, port.EntryQuery{Kind: domain.KindExpense, Status: domain.StatusPaid, From: yearStart, To: yearEnd})

	// Upcoming.
	list(&upcomingRevenues, port.EntryQuery{Kind: domain.KindRevenue, Status: domain.StatusPending, To: current.End, Ascending: true, Limit: domain.UpcomingFetchLimit})
	list(&upcomingExpenses, port.EntryQuery{Kind: domain.KindExpense, Status: domain.StatusPending, To: current.End, Ascending: true, Limit: domain.UpcomingFetchLimit})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard aggregation failed",
			zap.String("scope", scope.Label()),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}

	upcoming := domain.MergeUpcoming(upcomingRevenues, upcomingExpenses, domain.UpcomingLimit)
	hasData := len(yearRevenues)+len(yearExpenses)+len(pendingRevenues)+len(upcoming) > 0

	return &domain.DashboardOverview{
		Year:          year,
		Periodicity:   periodicity,
		Scope:         scope.Label(),
		Periods:       periods,
		CurrentPeriod: current,
		KPIs:          domain.ComputeKPIs(paidRevenues, paidExpenses, pendingRevenues),
		Series:        domain.BuildSeries(periods, yearRevenues, yearExpenses),
		Upcoming:      upcoming,
		HasData:       hasData,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/export"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/infra/resilience"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reports")

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportFile is a rendered report ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportsService runs the report modules and renders their exports.
type ReportsService struct {
	records  port.RecordStore
	firm     port.FirmStore
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportsService creates the reports service. The bulkhead bounds
// concurrent PDF renders.
func NewReportsService(
	records port.RecordStore,
	firm port.FirmStore,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportsService {
	return &ReportsService{
		records:  records,
		firm:     firm,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Entries runs the receitas or despesas report: filtered rows, newest first.
func (s *ReportsService) Entries(ctx context.Context, kind domain.ReportKind, scope domain.Scope, f domain.ReportFilter) (*domain.EntryReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportsService.Entries")
	defer span.End()
	span.SetAttributes(attribute.String("report.kind", string(kind)), attribute.String("scope", scope.Label()))

	entryKind := domain.KindRevenue
	switch kind {
	case domain.ReportReceitas:
	case domain.ReportDespesas:
		entryKind = domain.KindExpense
	default:
		return nil, &domain.ErrNotFound{Resource: "relatório", ID: string(kind)}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.records.ListEntries(ctx, port.EntryQuery{
		Kind:             entryKind,
		Scope:            scope,
		Status:           f.Status,
		From:             f.Start,
		To:               f.End,
		ClientID:         f.ClientID,
		ClassificationID: f.ClassificationID,
		WithNames:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s report: %w", kind, err)
	}
	if rows == nil {
		rows = []domain.Entry{}
	}

	return &domain.EntryReport{
		Kind:   kind,
		Scope:  scope.Label(),
		Filter: f,
		Rows:   rows,
		Total:  domain.SumAmounts(rows),
	}, nil
}

// Overdue runs the inadimplência report: pending revenues due before today,
// oldest first.
func (s *ReportsService) Overdue(ctx context.Context, scope domain.Scope, f domain.ReportFilter) (*domain.OverdueReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportsService.Overdue")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.Label()))

	if err := f.Validate(); err != nil {
		return nil, err
	}
	today := domain.DateOf(s.now())

	entries, err := s.records.ListEntries(ctx, port.EntryQuery{
		Kind:      domain.KindRevenue,
		Scope:     scope,
		Status:    domain.StatusPending,
		From:      f.Start,
		To:        f.End,
		Before:    today,
		ClientID:  f.ClientID,
		Ascending: true,
		WithNames: true,
	})
	if err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}

	rows := domain.BuildOverdueRows(entries, today)
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}

	return &domain.OverdueReport{
		Scope:  scope.Label(),
		Today:  today,
		Filter: domain.ReportFilter{Start: f.Start, End: f.End, ClientID: f.ClientID},
		Rows:   rows,
		Total:  total,
	}, nil
}

// Balance runs the balanço report: paid totals grouped by calendar month.
func (s *ReportsService) Balance(ctx context.Context, scope domain.Scope, f domain.ReportFilter) (*domain.BalanceReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportsService.Balance")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.Label()))

	if err := f.Validate(); err != nil {
		return nil, err
	}

	var revenues, expenses []domain.Entry
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenues, err = s.records.ListEntries(gCtx, port.EntryQuery{
			Kind: domain.KindRevenue, Scope: scope, Status: domain.StatusPaid, From: f.Start, To: f.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.records.ListEntries(gCtx, port.EntryQuery{
			Kind: domain.KindExpense, Scope: scope, Status: domain.StatusPaid, From: f.Start, To: f.End,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("balance report: %w", err)
	}

	months := domain.BuildBalance(revenues, expenses)
	recebido := domain.SumAmounts(revenues)
	pago := domain.SumAmounts(expenses)

	return &domain.BalanceReport{
		Scope:         scope.Label(),
		Filter:        domain.ReportFilter{Start: f.Start, End: f.End},
		Months:        months,
		TotalRecebido: recebido,
		TotalPago:     pago,
		Saldo:         recebido.Sub(pago),
	}, nil
}

// Export re-runs a report with the given filters and renders it. A report
// without rows is refused.
func (s *ReportsService) Export(ctx context.Context, kind domain.ReportKind, format string, scope domain.Scope, f domain.ReportFilter) (*ExportFile, error) {
	ctx, span := reportTracer.Start(ctx, "ReportsService.Export")
	defer span.End()
	span.SetAttributes(attribute.String("report.kind", string(kind)), attribute.String("report.format", format))

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, &domain.ErrValidation{Field: "format", Message: "Formato inválido: use csv ou pdf."}
	}

	var (
		records []export.Record
		summary []string
	)
	switch kind {
	case domain.ReportReceitas, domain.ReportDespesas:
		rep, err := s.Entries(ctx, kind, scope, f)
		if err != nil {
			return nil, err
		}
		records = entryRecords(rep.Rows)
		summary = []string{fmt.Sprintf("Total: %s (%d lançamentos)", export.BRL(rep.Total), len(rep.Rows))}
	case domain.ReportInadimplencia:
		rep, err := s.Overdue(ctx, scope, f)
		if err != nil {
			return nil, err
		}
		records = overdueRecords(rep.Rows)
		summary = []string{fmt.Sprintf("Total em atraso: %s (%d títulos)", export.BRL(rep.Total), len(rep.Rows))}
	case domain.ReportBalanco:
		rep, err := s.Balance(ctx, scope, f)
		if err != nil {
			return nil, err
		}
		records = balanceRecords(rep.Months)
		summary = []string{
			"Total recebido: " + export.BRL(rep.TotalRecebido),
			"Total pago: " + export.BRL(rep.TotalPago),
			"Saldo do período: " + export.BRL(rep.Saldo),
		}
	default:
		return nil, &domain.ErrNotFound{Resource: "relatório", ID: string(kind)}
	}

	if len(records) == 0 {
		return nil, &domain.ErrValidation{Field: "rows", Message: "Não há dados para exportar."}
	}

	filename := fmt.Sprintf("relatorio_%s_lexflow.%s", kind, format)
	if format == FormatCSV {
		s.metrics.IncrExport(string(kind), format)
		return &ExportFile{Filename: filename, ContentType: "text/csv; charset=utf-8", Body: export.CSV(records)}, nil
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "pdf export"}
	}
	defer s.bulkhead.Release()

	// Reports still print without a letterhead.
	firm, err := s.firm.GetFirmSettings(ctx)
	if err != nil {
		s.logger.Warn("firm settings unavailable for pdf header", zap.Error(err))
		firm = nil
	}

	body, err := export.PDF(export.Document{
		Title:       kind.Title(),
		Firm:        firm,
		Filters:     describeFilter(scope, f),
		Records:     records,
		Summary:     summary,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	s.metrics.IncrExport(string(kind), format)
	return &ExportFile{Filename: filename, ContentType: "application/pdf", Body: body}, nil
}

func entryRecords(rows []domain.Entry) []export.Record {
	records := make([]export.Record, 0, len(rows))
	for _, e := range rows {
		records = append(records, export.Record{
			{Key: "Data", Value: e.OccurredOn.BR()},
			{Key: "Descricao", Value: e.Description},
			{Key: "Cliente", Value: e.ClientName()},
			{Key: "Categoria", Value: e.ClassificationName()},
			{Key: "Status", Value: string(e.Status)},
			{Key: "Valor", Value: e.Amount.StringFixed(2)},
		})
	}
	return records
}

func overdueRecords(rows []domain.OverdueRow) []export.Record {
	records := make([]export.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, export.Record{
			{Key: "Vencimento", Value: r.OccurredOn.BR()},
			{Key: "Descricao", Value: r.Description},
			{Key: "Cliente", Value: r.ClientName()},
			{Key: "Valor", Value: r.Amount.StringFixed(2)},
			{Key: "DiasAtraso", Value: r.DaysOverdue},
		})
	}
	return records
}

func balanceRecords(months []domain.BalanceMonth) []export.Record {
	records := make([]export.Record, 0, len(months))
	for _, m := range months {
		records = append(records, export.Record{
			{Key: "Mes", Value: m.MonthLabel},
			{Key: "TotalRecebido", Value: m.TotalRecebido.StringFixed(2)},
			{Key: "TotalPago", Value: m.TotalPago.StringFixed(2)},
			{Key: "SaldoLiquido", Value: m.Saldo.StringFixed(2)},
		})
	}
	return records
}

func describeFilter(scope domain.Scope, f domain.ReportFilter) string {
	parts := []string{"Escopo: " + scopeDescription(scope)}
	if !f.Start.IsZero() {
		parts = append(parts, "De: "+f.Start.BR())
	}
	if !f.End.IsZero() {
		parts = append(parts, "Até: "+f.End.BR())
	}
	if f.Status != "" {
		parts = append(parts, "Status: "+string(f.Status))
	}
	return strings.Join(parts, " | ")
}

func scopeDescription(scope domain.Scope) string {
	if scope.All {
		return "todas as áreas"
	}
	if len(scope.WorkspaceIDs) == 1 {
		return "área " + scope.WorkspaceIDs[0]
	}
	return fmt.Sprintf("%d áreas", len(scope.WorkspaceIDs))
}

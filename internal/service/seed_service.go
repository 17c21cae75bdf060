package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var seedTracer = otel.Tracer("service/seed")

// ============================================================
// Seed: synthetic demo data
// ============================================================

// SeedService populates every workspace with demo records.
type SeedService struct {
	directory port.DirectoryStore
	store     port.SeedStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewSeedService creates the seed service.
func NewSeedService(directory port.DirectoryStore, store port.SeedStore, logger *zap.Logger) *SeedService {
	return &SeedService{
		directory: directory,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Usage describes how to trigger the seed.
func (s *SeedService) Usage() *domain.SeedUsage {
	return &domain.SeedUsage{
		Message: "Endpoint disponível. Use método POST para executar o seed.",
		Method:  "POST /api/seed",
		Access:  "gestor",
	}
}

var (
	revenueSeedClassifications = [][2]string{{"Honorários", "Honorários advocatícios"}, {"Consultoria", "Consultoria jurídica"}}
	expenseSeedClassifications = [][2]string{{"Custas", "Custas processuais"}, {"Sistemas", "Ferramentas e sistemas"}}
)

// Run inserts, per workspace: 3 clients, 2 revenue and 2 expense
// classifications, then 5 to 8 revenues and 5 to 8 expenses dated between the
// first day of last month and the 28th of next month.
func (s *SeedService) Run(ctx context.Context) (*domain.SeedResult, error) {
	ctx, span := seedTracer.Start(ctx, "SeedService.Run")
	defer span.End()

	createdBy := ""
	if p := domain.PrincipalFrom(ctx); p != nil {
		createdBy = p.UserID
	}
	ctx = domain.Elevated(ctx)

	workspaces, err := s.directory.ListWorkspaces(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	if len(workspaces) == 0 {
		return nil, &domain.ErrValidation{Field: "workspaces", Message: "Nenhum workspace encontrado para seed."}
	}

	now := s.now()
	today := domain.DateOf(now)
	from := domain.NewDate(now.Year(), now.Month()-1, 1)
	to := domain.NewDate(now.Year(), now.Month()+1, 28)
	tag := uuid.NewString()[:8]

	var summary domain.SeedSummary
	for _, ws := range workspaces {
		short := ws.ID
		if len(short) > 4 {
			short = short[:4]
		}

		clients := make([]map[string]any, 3)
		for i := range clients {
			clients[i] = map[string]any{
				"workspace_id":   ws.ID,
				"name":           fmt.Sprintf("Cliente %d - WS %s", i+1, short),
				"cpf":            fmt.Sprintf("%011d", randInt(10000000000, 99999999999)),
				"phone":          fmt.Sprintf("+55 82 9%08d", randInt(10000000, 99999999)),
				"process_number": fmt.Sprintf("PROC-%s-%s-%d", tag, short, i+1),
				"created_by":     nullable(createdBy),
			}
		}
		clientIDs, err := s.store.InsertRows(ctx, "clients", clients)
		if err != nil {
			return nil, fmt.Errorf("seed clients: %w", err)
		}

		revClassIDs, err := s.store.InsertRows(ctx, domain.KindRevenue.ClassificationTable(), classificationRows(ws.ID, createdBy, revenueSeedClassifications))
		if err != nil {
			return nil, fmt.Errorf("seed revenue classifications: %w", err)
		}
		expClassIDs, err := s.store.InsertRows(ctx, domain.KindExpense.ClassificationTable(), classificationRows(ws.ID, createdBy, expenseSeedClassifications))
		if err != nil {
			return nil, fmt.Errorf("seed expense classifications: %w", err)
		}

		revenues := entryRows(ws.ID, short, "Receita", createdBy, clientIDs, revClassIDs, 500, 15000, from, to, today)
		if _, err := s.store.InsertRows(ctx, domain.KindRevenue.Table(), revenues); err != nil {
			return nil, fmt.Errorf("seed revenues: %w", err)
		}
		expenses := entryRows(ws.ID, short, "Despesa", createdBy, clientIDs, expClassIDs, 50, 2000, from, to, today)
		if _, err := s.store.InsertRows(ctx, domain.KindExpense.Table(), expenses); err != nil {
			return nil, fmt.Errorf("seed expenses: %w", err)
		}

		summary.Workspaces++
		summary.Clients += len(clientIDs)
		summary.RevenueClassifications += len(revClassIDs)
		summary.ExpenseClassifications += len(expClassIDs)
		summary.Revenues += len(revenues)
		summary.Expenses += len(expenses)
	}
	span.SetAttributes(attribute.Int("seed.workspaces", summary.Workspaces))

	s.logger.Info("seed completed",
		zap.String("tag", tag),
		zap.Int("workspaces", summary.Workspaces),
		zap.Int("revenues", summary.Revenues),
		zap.Int("expenses", summary.Expenses),
	)
	return &domain.SeedResult{OK: true, Message: "Seed concluído com sucesso.", Summary: summary}, nil
}

func classificationRows(workspaceID, createdBy string, items [][2]string) []map[string]any {
	rows := make([]map[string]any, len(items))
	for i, it := range items {
		rows[i] = map[string]any{
			"workspace_id": workspaceID,
			"name":         it[0],
			"description":  it[1],
			"code":         "",
			"active":       true,
			"created_by":   nullable(createdBy),
		}
	}
	return rows
}

// entryRows builds random entries. Dates after today are pending, the rest paid.
func entryRows(
	workspaceID, short, label, createdBy string,
	clientIDs, classificationIDs []string,
	minAmount, maxAmount int,
	from, to, today domain.Date,
) []map[string]any {
	n := randInt(5, 8)
	days := int(to.Sub(from.Time).Hours()/24) + 1
	rows := make([]map[string]any, n)
	for i := range rows {
		on := domain.DateOf(from.AddDate(0, 0, rand.Intn(days)))
		status := domain.StatusPaid
		if on.After(today) {
			status = domain.StatusPending
		}
		cents := randInt(minAmount*100, maxAmount*100)
		rows[i] = map[string]any{
			"workspace_id":      workspaceID,
			"client_id":         clientIDs[rand.Intn(len(clientIDs))],
			"classification_id": classificationIDs[rand.Intn(len(classificationIDs))],
			"description":       fmt.Sprintf("%s %d - %s", label, i+1, short),
			"amount":            decimal.New(int64(cents), -2),
			"occurred_on":       on.String(),
			"status":            string(status),
			"created_by":        nullable(createdBy),
		}
	}
	return rows
}

func randInt(lo, hi int) int {
	return lo + rand.Intn(hi-lo+1)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

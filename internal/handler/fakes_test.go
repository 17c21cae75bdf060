package handler_test

import (
	"context"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/handler"
	"github.com/lexflow/lexflow-api-go/internal/infra/cache"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/infra/resilience"
	"github.com/lexflow/lexflow-api-go/internal/port"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret-with-at-least-32-characters"

// --- Fakes ---

type stubDirectory struct {
	profiles    map[string]domain.Profile
	memberships []domain.Membership
	workspaces  []domain.Workspace
}

func (d *stubDirectory) ListWorkspaces(_ context.Context, ids []string) ([]domain.Workspace, error) {
	var out []domain.Workspace
	for _, w := range d.workspaces {
		if ids == nil || slices.Contains(ids, w.ID) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (d *stubDirectory) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	p, ok := d.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (d *stubDirectory) ListProfiles(context.Context, []string) ([]domain.Profile, error) {
	return nil, nil
}
func (d *stubDirectory) UpsertProfile(context.Context, domain.Profile) error { return nil }
func (d *stubDirectory) UpdateProfileName(context.Context, string, string) error { return nil }
func (d *stubDirectory) DeleteProfile(context.Context, string) error { return nil }
func (d *stubDirectory) AddMemberships(context.Context, string, []string) error { return nil }
func (d *stubDirectory) RemoveMemberships(context.Context, string, []string) error { return nil }
func (d *stubDirectory) ListAllMemberships(context.Context) ([]domain.Membership, error) {
	return d.memberships, nil
}

func (d *stubDirectory) ListMemberships(_ context.Context, userID string) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range d.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubRecords struct {
	entries map[domain.EntryKind][]domain.Entry
	err     error
}

func (s *stubRecords) ListEntries(_ context.Context, q port.EntryQuery) ([]domain.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Entry
	for _, e := range s.entries[q.Kind] {
		if q.Scope.Contains(e.WorkspaceID) && (q.Status == "" || e.Status == q.Status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRecords) ListClients(context.Context, domain.Scope) ([]domain.Client, error) {
	return nil, s.err
}
func (s *stubRecords) CreateClient(_ context.Context, c domain.Client) (*domain.Client, error) {
	c.ID = "c-new"
	return &c, s.err
}
func (s *stubRecords) UpdateClient(context.Context, domain.Scope, string, map[string]any) (*domain.Client, error) {
	return &domain.Client{}, s.err
}
func (s *stubRecords) DeleteClient(context.Context, domain.Scope, string) error { return s.err }
func (s *stubRecords) ListClassifications(context.Context, domain.EntryKind, domain.Scope) ([]domain.Classification, error) {
	return nil, s.err
}
func (s *stubRecords) CreateClassification(_ context.Context, _ domain.EntryKind, c domain.Classification) (*domain.Classification, error) {
	return &c, s.err
}
func (s *stubRecords) UpdateClassification(context.Context, domain.EntryKind, domain.Scope, string, map[string]any) (*domain.Classification, error) {
	return &domain.Classification{}, s.err
}
func (s *stubRecords) DeleteClassification(context.Context, domain.EntryKind, domain.Scope, string) error {
	return s.err
}
func (s *stubRecords) CreateEntry(_ context.Context, _ domain.EntryKind, e domain.Entry) (*domain.Entry, error) {
	e.ID = "e-new"
	return &e, s.err
}
func (s *stubRecords) UpdateEntry(context.Context, domain.EntryKind, domain.Scope, string, map[string]any) (*domain.Entry, error) {
	return &domain.Entry{}, s.err
}
func (s *stubRecords) DeleteEntry(context.Context, domain.EntryKind, domain.Scope, string) error {
	return s.err
}

type stubFirm struct{}

func (stubFirm) GetFirmSettings(context.Context) (*domain.FirmSettings, error) {
	return &domain.FirmSettings{ID: domain.FirmSettingsID, Name: "Silva Advogados"}, nil
}

func (stubFirm) UpsertFirmSettings(_ context.Context, s domain.FirmSettings) (*domain.FirmSettings, error) {
	return &s, nil
}

// --- Builders ---

type testEnv struct {
	router    http.Handler
	directory *stubDirectory
	records   *stubRecords
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	dir := &stubDirectory{
		profiles: map[string]domain.Profile{
			"gestor-1":    {UserID: "gestor-1", Name: "Gestora", Role: domain.RoleGestor},
			"associado-1": {UserID: "associado-1", Name: "Associado", Role: domain.RoleAssociado},
		},
		memberships: []domain.Membership{{UserID: "associado-1", WorkspaceID: "ws-a"}},
		workspaces:  []domain.Workspace{{ID: "ws-a", Name: "Cível"}, {ID: "ws-b", Name: "Trabalhista"}},
	}
	today := domain.DateOf(time.Now())
	records := &stubRecords{entries: map[domain.EntryKind][]domain.Entry{
		domain.KindRevenue: {
			testEntry("r1", "ws-a", "1500.00", today, domain.StatusPaid),
			testEntry("r2", "ws-b", "800.50", today, domain.StatusPaid),
		},
	}}

	access := service.NewAccessService(dir, cache.New[domain.Principal](time.Minute), metrics, logger, testSecret)
	svc := handler.Services{
		Access:    access,
		Dashboard: service.NewDashboardService(records, metrics, logger),
		Reports:   service.NewReportsService(records, stubFirm{}, resilience.NewBulkhead(2), metrics, logger),
		Users:     service.NewUsersService(nil, dir, access, logger),
		Backup:    service.NewBackupService(nil, logger),
		Seed:      service.NewSeedService(dir, nil, logger),
		Records:   service.NewRecordsService(records, logger),
		Settings:  service.NewSettingsService(stubFirm{}, logger),
	}
	return &testEnv{
		router:    handler.NewRouter(svc, handler.Options{HeavyRateLimit: 100}, metrics, logger),
		directory: dir,
		records:   records,
	}
}

func testEntry(id, workspace, amount string, on domain.Date, status domain.EntryStatus) domain.Entry {
	return domain.Entry{
		ID:          id,
		WorkspaceID: workspace,
		Description: "lançamento " + id,
		Amount:      decimal.RequireFromString(amount),
		OccurredOn:  on,
		Status:      status,
	}
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	claims := service.SupabaseClaims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

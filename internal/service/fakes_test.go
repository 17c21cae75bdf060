package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"github.com/shopspring/decimal"
)

// --- Fakes ---

type fakeRecords struct {
	mu      sync.Mutex
	entries map[domain.EntryKind][]domain.Entry
	queries []port.EntryQuery
	created []domain.Entry
	updated map[string]map[string]any
	err     error
}

func newFakeRecords(revenues, expenses []domain.Entry) *fakeRecords {
	return &fakeRecords{
		entries: map[domain.EntryKind][]domain.Entry{
			domain.KindRevenue: revenues,
			domain.KindExpense: expenses,
		},
		updated: map[string]map[string]any{},
	}
}

func (f *fakeRecords) ListEntries(_ context.Context, q port.EntryQuery) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	var out []domain.Entry
	for _, e := range f.entries[q.Kind] {
		switch {
		case !q.Scope.Contains(e.WorkspaceID):
		case q.Status != "" && e.Status != q.Status:
		case !q.From.IsZero() && e.OccurredOn.Before(q.From):
		case !q.To.IsZero() && e.OccurredOn.After(q.To):
		case !q.Before.IsZero() && !e.OccurredOn.Before(q.Before):
		case q.ClientID != "" && (e.ClientID == nil || *e.ClientID != q.ClientID):
		case q.ClassificationID != "" && (e.ClassificationID == nil || *e.ClassificationID != q.ClassificationID):
		default:
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].OccurredOn.After(out[j].OccurredOn)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeRecords) CreateEntry(_ context.Context, kind domain.EntryKind, e domain.Entry) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = fmt.Sprintf("%s-%d", kind, len(f.created)+1)
	f.created = append(f.created, e)
	return &e, nil
}

func (f *fakeRecords) UpdateEntry(_ context.Context, _ domain.EntryKind, scope domain.Scope, id string, fields map[string]any) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = fields
	return &domain.Entry{ID: id}, nil
}

func (f *fakeRecords) DeleteEntry(context.Context, domain.EntryKind, domain.Scope, string) error {
	return nil
}

func (f *fakeRecords) ListClients(context.Context, domain.Scope) ([]domain.Client, error) {
	return nil, nil
}

func (f *fakeRecords) CreateClient(_ context.Context, c domain.Client) (*domain.Client, error) {
	c.ID = "client-1"
	return &c, nil
}

func (f *fakeRecords) UpdateClient(_ context.Context, _ domain.Scope, id string, fields map[string]any) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = fields
	return &domain.Client{ID: id}, nil
}

func (f *fakeRecords) DeleteClient(context.Context, domain.Scope, string) error { return nil }

func (f *fakeRecords) ListClassifications(context.Context, domain.EntryKind, domain.Scope) ([]domain.Classification, error) {
	return nil, nil
}

func (f *fakeRecords) CreateClassification(_ context.Context, _ domain.EntryKind, c domain.Classification) (*domain.Classification, error) {
	c.ID = "class-1"
	return &c, nil
}

func (f *fakeRecords) UpdateClassification(_ context.Context, _ domain.EntryKind, _ domain.Scope, id string, _ map[string]any) (*domain.Classification, error) {
	return &domain.Classification{ID: id}, nil
}

func (f *fakeRecords) DeleteClassification(context.Context, domain.EntryKind, domain.Scope, string) error {
	return nil
}

type fakeDirectory struct {
	mu          sync.Mutex
	workspaces  []domain.Workspace
	profiles    map[string]domain.Profile
	memberships []domain.Membership

	profileReads int
	upsertErr    error
	added        map[string][]string
	removed      map[string][]string
	deleted      []string
	tokens       []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles: map[string]domain.Profile{},
		added:    map[string][]string{},
		removed:  map[string][]string{},
	}
}

func (f *fakeDirectory) ListWorkspaces(_ context.Context, ids []string) ([]domain.Workspace, error) {
	if ids == nil {
		return f.workspaces, nil
	}
	var out []domain.Workspace
	for _, w := range f.workspaces {
		if slices.Contains(ids, w.ID) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeDirectory) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileReads++
	if p := domain.PrincipalFrom(ctx); p != nil {
		f.tokens = append(f.tokens, p.AccessToken)
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeDirectory) ListProfiles(_ context.Context, ids []string) ([]domain.Profile, error) {
	var out []domain.Profile
	for id, p := range f.profiles {
		if ids == nil || slices.Contains(ids, id) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeDirectory) UpsertProfile(_ context.Context, p domain.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeDirectory) UpdateProfileName(_ context.Context, userID, name string) error {
	p := f.profiles[userID]
	p.UserID = userID
	p.Name = name
	f.profiles[userID] = p
	return nil
}

func (f *fakeDirectory) DeleteProfile(_ context.Context, userID string) error {
	delete(f.profiles, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeDirectory) ListMemberships(_ context.Context, userID string) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListAllMemberships(context.Context) ([]domain.Membership, error) {
	return f.memberships, nil
}

func (f *fakeDirectory) AddMemberships(_ context.Context, userID string, ids []string) error {
	f.added[userID] = append(f.added[userID], ids...)
	return nil
}

func (f *fakeDirectory) RemoveMemberships(_ context.Context, userID string, ids []string) error {
	f.removed[userID] = append(f.removed[userID], ids...)
	return nil
}

type fakeAuthAdmin struct {
	created   []string
	updated   []string
	deleted   []string
	createErr error
	elevated  []bool
}

func (f *fakeAuthAdmin) CreateUser(ctx context.Context, email, _, _ string) (*domain.AuthUser, error) {
	f.elevated = append(f.elevated, domain.IsElevated(ctx))
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("user-%d", len(f.created)+1)
	f.created = append(f.created, id)
	return &domain.AuthUser{ID: id, Email: email}, nil
}

func (f *fakeAuthAdmin) UpdateUser(ctx context.Context, userID, _, _, _ string) error {
	f.elevated = append(f.elevated, domain.IsElevated(ctx))
	f.updated = append(f.updated, userID)
	return nil
}

func (f *fakeAuthAdmin) DeleteUser(ctx context.Context, userID string) error {
	f.elevated = append(f.elevated, domain.IsElevated(ctx))
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeAudit struct {
	rows        []domain.AuditLog
	total       int
	lastQuery   port.AuditQuery
	cutoffs     []time.Time
	scopes      []domain.Scope
	elevated    []bool
	deleteCount int
}

func (f *fakeAudit) ListAuditLogs(_ context.Context, q port.AuditQuery) ([]domain.AuditLog, int, error) {
	f.lastQuery = q
	return f.rows, f.total, nil
}

func (f *fakeAudit) DeleteAuditLogsBefore(ctx context.Context, scope domain.Scope, before time.Time) (int, error) {
	f.cutoffs = append(f.cutoffs, before)
	f.scopes = append(f.scopes, scope)
	f.elevated = append(f.elevated, domain.IsElevated(ctx))
	return f.deleteCount, nil
}

type fakeFirm struct {
	settings *domain.FirmSettings
	saved    *domain.FirmSettings
}

func (f *fakeFirm) GetFirmSettings(context.Context) (*domain.FirmSettings, error) {
	return f.settings, nil
}

func (f *fakeFirm) UpsertFirmSettings(_ context.Context, s domain.FirmSettings) (*domain.FirmSettings, error) {
	f.saved = &s
	return &s, nil
}

type fakeBulk struct {
	mu       sync.Mutex
	tables   map[string][]json.RawMessage
	inserted map[string]int
	filters  map[string][]string
}

func newFakeBulk() *fakeBulk {
	return &fakeBulk{
		tables:   map[string][]json.RawMessage{},
		inserted: map[string]int{},
		filters:  map[string][]string{},
	}
}

func (f *fakeBulk) DumpTable(_ context.Context, table string, ids []string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters[table] = ids
	if table == "workspaces" && ids != nil {
		var out []json.RawMessage
		for _, raw := range f.tables[table] {
			var w struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(raw, &w)
			if slices.Contains(ids, w.ID) {
				out = append(out, raw)
			}
		}
		return out, nil
	}
	return f.tables[table], nil
}

func (f *fakeBulk) InsertRows(_ context.Context, table string, rows []map[string]any) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = fmt.Sprintf("%s-%d", table, f.inserted[table]+i+1)
	}
	f.inserted[table] += len(rows)
	return ids, nil
}

// --- Builders ---

func entry(id, workspace string, amount string, on domain.Date, status domain.EntryStatus) domain.Entry {
	return domain.Entry{
		ID:          id,
		WorkspaceID: workspace,
		Description: "lançamento " + id,
		Amount:      decimal.RequireFromString(amount),
		OccurredOn:  on,
		Status:      status,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func gestorCtx(userID string) context.Context {
	return domain.WithPrincipal(context.Background(), &domain.Principal{UserID: userID, Role: domain.RoleGestor, AccessToken: "tok"})
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var recordsTracer = otel.Tracer("service/records")

// RecordsService is the scoped CRUD for clients, classifications and entries.
// Every read and write is restricted to the scope passed in.
type RecordsService struct {
	store  port.RecordStore
	logger *zap.Logger
}

// NewRecordsService creates the cadastros service.
func NewRecordsService(store port.RecordStore, logger *zap.Logger) *RecordsService {
	return &RecordsService{store: store, logger: logger}
}

func callerID(ctx context.Context) string {
	if p := domain.PrincipalFrom(ctx); p != nil {
		return p.UserID
	}
	return ""
}

// ============================================================
// Clients
// ============================================================

func (s *RecordsService) ListClients(ctx context.Context, scope domain.Scope) ([]domain.Client, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.ListClients")
	defer span.End()

	rows, err := s.store.ListClients(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if rows == nil {
		rows = []domain.Client{}
	}
	return rows, nil
}

func (s *RecordsService) CreateClient(ctx context.Context, scope domain.Scope, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.CreateClient")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	workspaceID, err := domain.TargetWorkspace(scope, in.WorkspaceID)
	if err != nil {
		return nil, err
	}

	return s.store.CreateClient(ctx, domain.Client{
		WorkspaceID:   workspaceID,
		Name:          in.Name,
		CPF:           strings.TrimSpace(in.CPF),
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		ProcessNumber: strings.TrimSpace(in.ProcessNumber),
		Notes:         in.Notes,
		CreatedBy:     callerID(ctx),
	})
}

func (s *RecordsService) UpdateClient(ctx context.Context, scope domain.Scope, id string, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"name":           in.Name,
		"cpf":            strings.TrimSpace(in.CPF),
		"phone":          strings.TrimSpace(in.Phone),
		"address":        strings.TrimSpace(in.Address),
		"process_number": strings.TrimSpace(in.ProcessNumber),
		"notes":          in.Notes,
	}
	if err := moveWorkspace(scope, in.WorkspaceID, fields); err != nil {
		return nil, err
	}
	return s.store.UpdateClient(ctx, scope, id, fields)
}

func (s *RecordsService) DeleteClient(ctx context.Context, scope domain.Scope, id string) error {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.DeleteClient")
	defer span.End()

	if err := s.store.DeleteClient(ctx, scope, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.String("client_id", id), zap.String("user_id", callerID(ctx)))
	return nil
}

// ============================================================
// Classifications
// ============================================================

func (s *RecordsService) ListClassifications(ctx context.Context, kind domain.EntryKind, scope domain.Scope) ([]domain.Classification, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.ListClassifications")
	defer span.End()

	rows, err := s.store.ListClassifications(ctx, kind, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s classifications: %w", kind, err)
	}
	if rows == nil {
		rows = []domain.Classification{}
	}
	return rows, nil
}

func (s *RecordsService) CreateClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, in *domain.ClassificationInput) (*domain.Classification, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.CreateClassification")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	workspaceID, err := domain.TargetWorkspace(scope, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return s.store.CreateClassification(ctx, kind, domain.Classification{
		WorkspaceID: workspaceID,
		Name:        in.Name,
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		Active:      active,
		CreatedBy:   callerID(ctx),
	})
}

func (s *RecordsService) UpdateClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, in *domain.ClassificationInput) (*domain.Classification, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.UpdateClassification")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"name":        in.Name,
		"code":        strings.TrimSpace(in.Code),
		"description": in.Description,
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if err := moveWorkspace(scope, in.WorkspaceID, fields); err != nil {
		return nil, err
	}
	return s.store.UpdateClassification(ctx, kind, scope, id, fields)
}

func (s *RecordsService) DeleteClassification(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.DeleteClassification")
	defer span.End()

	return s.store.DeleteClassification(ctx, kind, scope, id)
}

// ============================================================
// Revenues & expenses
// ============================================================

// ListEntries returns entries of kind inside scope, newest first.
func (s *RecordsService) ListEntries(ctx context.Context, kind domain.EntryKind, scope domain.Scope, f domain.ReportFilter) ([]domain.Entry, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.ListEntries")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)), attribute.String("scope", scope.Label()))

	if err := f.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListEntries(ctx, port.EntryQuery{
		Kind:             kind,
		Scope:            scope,
		Status:           f.Status,
		From:             f.Start,
		To:               f.End,
		ClientID:         f.ClientID,
		ClassificationID: f.ClassificationID,
		WithNames:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	if rows == nil {
		rows = []domain.Entry{}
	}
	return rows, nil
}

func (s *RecordsService) CreateEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, in *domain.EntryInput) (*domain.Entry, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.CreateEntry")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)))

	e, err := entryFromInput(in)
	if err != nil {
		return nil, err
	}
	e.WorkspaceID, err = domain.TargetWorkspace(scope, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	e.CreatedBy = callerID(ctx)

	created, err := s.store.CreateEntry(ctx, kind, *e)
	if err != nil {
		return nil, err
	}
	s.logger.Info("entry created",
		zap.String("kind", string(kind)),
		zap.String("entry_id", created.ID),
		zap.String("workspace_id", created.WorkspaceID),
	)
	return created, nil
}

func (s *RecordsService) UpdateEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string, in *domain.EntryInput) (*domain.Entry, error) {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.UpdateEntry")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)), attribute.String("entry.id", id))

	e, err := entryFromInput(in)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"client_id":         e.ClientID,
		"classification_id": e.ClassificationID,
		"description":       e.Description,
		"amount":            e.Amount,
		"occurred_on":       e.OccurredOn.String(),
		"status":            string(e.Status),
		"notes":             e.Notes,
	}
	if err := moveWorkspace(scope, in.WorkspaceID, fields); err != nil {
		return nil, err
	}
	return s.store.UpdateEntry(ctx, kind, scope, id, fields)
}

func (s *RecordsService) DeleteEntry(ctx context.Context, kind domain.EntryKind, scope domain.Scope, id string) error {
	ctx, span := recordsTracer.Start(ctx, "RecordsService.DeleteEntry")
	defer span.End()

	if err := s.store.DeleteEntry(ctx, kind, scope, id); err != nil {
		return err
	}
	s.logger.Info("entry deleted", zap.String("kind", string(kind)), zap.String("entry_id", id))
	return nil
}

func entryFromInput(in *domain.EntryInput) (*domain.Entry, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.ClassificationID = strings.TrimSpace(in.ClassificationID)
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	on, err := domain.ParseDate(in.OccurredOn)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "occurred_on", Message: "Campo occurred_on deve estar no formato AAAA-MM-DD."}
	}

	e := &domain.Entry{
		Description: in.Description,
		Amount:      in.Amount.Round(2),
		OccurredOn:  on,
		Status:      in.Status,
		Notes:       in.Notes,
	}
	classificationID := in.ClassificationID
	e.ClassificationID = &classificationID
	if in.ClientID != "" {
		clientID := in.ClientID
		e.ClientID = &clientID
	}
	return e, nil
}

// moveWorkspace sets workspace_id when the update asks to move the record,
// as long as the destination is inside the scope.
func moveWorkspace(scope domain.Scope, requested string, fields map[string]any) error {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return nil
	}
	if !scope.Contains(requested) {
		return &domain.ErrForbidden{Action: "Área fora do escopo selecionado."}
	}
	fields["workspace_id"] = requested
	return nil
}

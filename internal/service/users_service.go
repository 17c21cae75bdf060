package service

import (
	"context"
	"fmt"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var usersTracer = otel.Tracer("service/users")

// UsersService manages auth identities, profiles and memberships. Every call
// runs with the service role; callers are gestor-gated at the router.
type UsersService struct {
	auth      port.AuthAdmin
	directory port.DirectoryStore
	access    *AccessService
	logger    *zap.Logger
}

// NewUsersService creates the user management service.
func NewUsersService(auth port.AuthAdmin, directory port.DirectoryStore, access *AccessService, logger *zap.Logger) *UsersService {
	return &UsersService{
		auth:      auth,
		directory: directory,
		access:    access,
		logger:    logger,
	}
}

// List returns every profile with its memberships and the workspace catalogue.
func (s *UsersService) List(ctx context.Context) (*domain.UserList, error) {
	ctx, span := usersTracer.Start(ctx, "UsersService.List")
	defer span.End()
	ctx = domain.Elevated(ctx)

	profiles, err := s.directory.ListProfiles(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	memberships, err := s.directory.ListAllMemberships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	workspaces, err := s.directory.ListWorkspaces(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}

	byUser := map[string][]string{}
	for _, m := range memberships {
		byUser[m.UserID] = append(byUser[m.UserID], m.WorkspaceID)
	}
	users := make([]domain.ManagedUser, 0, len(profiles))
	for _, p := range profiles {
		ids := byUser[p.UserID]
		if ids == nil {
			ids = []string{}
		}
		users = append(users, domain.ManagedUser{Profile: p, WorkspaceIDs: ids})
	}
	if workspaces == nil {
		workspaces = []domain.Workspace{}
	}
	return &domain.UserList{Users: users, Workspaces: workspaces}, nil
}

// Create registers a confirmed auth identity, its profile and memberships.
// The identity is removed again when a later step fails.
func (s *UsersService) Create(ctx context.Context, in *domain.UserInput) (*domain.UserCreated, error) {
	ctx, span := usersTracer.Start(ctx, "UsersService.Create")
	defer span.End()
	ctx = domain.Elevated(ctx)

	in.Normalize()
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	user, err := s.auth.CreateUser(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	if err := s.writeProfile(ctx, user.ID, in); err != nil {
		s.compensate(ctx, user.ID, err)
		return nil, err
	}
	if len(in.WorkspaceIDs) > 0 {
		if err := s.directory.AddMemberships(ctx, user.ID, in.WorkspaceIDs); err != nil {
			s.compensate(ctx, user.ID, err)
			return nil, err
		}
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(in.Role)),
		zap.Int("workspaces", len(in.WorkspaceIDs)),
	)
	return &domain.UserCreated{OK: true, UserID: user.ID}, nil
}

func (s *UsersService) compensate(ctx context.Context, userID string, cause error) {
	s.logger.Warn("user creation failed, removing auth identity",
		zap.String("user_id", userID),
		zap.Error(cause),
	)
	if err := s.auth.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.Error("compensating delete failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *UsersService) writeProfile(ctx context.Context, userID string, in *domain.UserInput) error {
	p := domain.Profile{
		UserID: userID,
		Name:   in.Name,
		Email:  in.Email,
		Role:   in.Role,
	}
	if in.DefaultWorkspaceID != "" {
		def := in.DefaultWorkspaceID
		p.DefaultWorkspaceID = &def
	}
	return s.directory.UpsertProfile(ctx, p)
}

// Update rewrites the identity and profile of userID and reconciles its
// memberships with the requested list.
func (s *UsersService) Update(ctx context.Context, userID string, in *domain.UserInput) error {
	ctx, span := usersTracer.Start(ctx, "UsersService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))
	ctx = domain.Elevated(ctx)

	in.Normalize()
	if err := in.Validate(false); err != nil {
		return err
	}

	if err := s.auth.UpdateUser(ctx, userID, in.Email, in.Password, in.Name); err != nil {
		return err
	}
	if err := s.writeProfile(ctx, userID, in); err != nil {
		return err
	}

	current, err := s.directory.ListMemberships(ctx, userID)
	if err != nil {
		return err
	}
	currentIDs := make([]string, 0, len(current))
	for _, m := range current {
		currentIDs = append(currentIDs, m.WorkspaceID)
	}
	remove, add := domain.MembershipDiff(currentIDs, in.WorkspaceIDs)
	if len(remove) > 0 {
		if err := s.directory.RemoveMemberships(ctx, userID, remove); err != nil {
			return err
		}
	}
	if len(add) > 0 {
		if err := s.directory.AddMemberships(ctx, userID, add); err != nil {
			return err
		}
	}
	s.access.Invalidate(userID)

	s.logger.Info("user updated",
		zap.String("user_id", userID),
		zap.Int("memberships_added", len(add)),
		zap.Int("memberships_removed", len(remove)),
	)
	return nil
}

// Delete removes the auth identity of userID. A gestor cannot delete itself.
func (s *UsersService) Delete(ctx context.Context, userID string) error {
	ctx, span := usersTracer.Start(ctx, "UsersService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if p := domain.PrincipalFrom(ctx); p != nil && p.UserID == userID {
		return &domain.ErrValidation{Field: "userId", Message: "Não é permitido excluir o próprio usuário gestor."}
	}
	ctx = domain.Elevated(ctx)

	if err := s.auth.DeleteUser(ctx, userID); err != nil {
		return err
	}
	// Profiles cascade from auth.users; this covers databases without the FK.
	if err := s.directory.DeleteProfile(ctx, userID); err != nil {
		s.logger.Warn("profile cleanup after user delete failed", zap.String("user_id", userID), zap.Error(err))
	}
	s.access.Invalidate(userID)

	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}

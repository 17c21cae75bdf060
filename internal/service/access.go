package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var accessTracer = otel.Tracer("service/access")

// SupabaseClaims are the claims Supabase Auth puts in user access tokens.
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AccessService authenticates callers and resolves what they can see.
type AccessService struct {
	directory port.DirectoryStore
	cache     port.Cache[domain.Principal]
	metrics   *observability.Metrics
	logger    *zap.Logger
	jwtSecret []byte
}

// NewAccessService creates the access service.
func NewAccessService(
	directory port.DirectoryStore,
	cache port.Cache[domain.Principal],
	metrics *observability.Metrics,
	logger *zap.Logger,
	jwtSecret string,
) *AccessService {
	return &AccessService{
		directory: directory,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateAccessToken checks the signature and expiry of a Supabase token.
func (s *AccessService) ValidateAccessToken(tokenString string) (*SupabaseClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SupabaseClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{}
	}

	claims, ok := token.Claims.(*SupabaseClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{}
	}
	if claims.Role != "" && claims.Role != "authenticated" {
		return nil, &domain.ErrUnauthorized{}
	}
	return claims, nil
}

// Authenticate turns a bearer token into the caller's principal: role from
// the profile (missing profile means associado) and workspace memberships.
func (s *AccessService) Authenticate(ctx context.Context, tokenString string) (*domain.Principal, error) {
	ctx, span := accessTracer.Start(ctx, "AccessService.Authenticate")
	defer span.End()

	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", claims.Subject))

	cacheKey := principalCacheKey(claims.Subject)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("principal")
		p := cached
		p.AccessToken = tokenString
		return &p, nil
	}
	s.metrics.IncrCacheMiss("principal")

	// Profile and memberships are read with the caller's own token.
	asCaller := domain.WithPrincipal(ctx, &domain.Principal{UserID: claims.Subject, AccessToken: tokenString})

	profile, err := s.directory.GetProfile(asCaller, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	memberships, err := s.directory.ListMemberships(asCaller, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	p := domain.Principal{
		UserID: claims.Subject,
		Email:  strings.ToLower(claims.Email),
		Role:   domain.RoleAssociado,
	}
	if profile != nil {
		p.Role = domain.ParseRole(string(profile.Role))
		p.Name = profile.Name
		if profile.Email != "" {
			p.Email = profile.Email
		}
		if profile.DefaultWorkspaceID != nil {
			p.DefaultWorkspaceID = *profile.DefaultWorkspaceID
		}
	}
	p.WorkspaceIDs = make([]string, 0, len(memberships))
	for _, m := range memberships {
		p.WorkspaceIDs = append(p.WorkspaceIDs, m.WorkspaceID)
	}

	s.cache.Set(cacheKey, p)
	p.AccessToken = tokenString
	return &p, nil
}

// Invalidate drops the cached principal of userID.
func (s *AccessService) Invalidate(userID string) {
	s.cache.Delete(principalCacheKey(userID))
}

// Scope resolves the workspace selection of the caller in ctx.
func (s *AccessService) Scope(ctx context.Context, selected string) (domain.Scope, error) {
	return domain.ResolveScope(domain.PrincipalFrom(ctx), selected)
}

// Me returns the caller, the workspaces they can select and the initial scope.
func (s *AccessService) Me(ctx context.Context) (*domain.Me, error) {
	ctx, span := accessTracer.Start(ctx, "AccessService.Me")
	defer span.End()

	p := domain.PrincipalFrom(ctx)
	if p == nil {
		return nil, &domain.ErrUnauthorized{}
	}

	var (
		workspaces []domain.Workspace
		err        error
	)
	switch {
	case p.IsGestor():
		workspaces, err = s.directory.ListWorkspaces(ctx, nil)
	case len(p.WorkspaceIDs) > 0:
		workspaces, err = s.directory.ListWorkspaces(ctx, p.WorkspaceIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	if workspaces == nil {
		workspaces = []domain.Workspace{}
	}

	return &domain.Me{
		Principal:    p,
		Workspaces:   workspaces,
		InitialScope: domain.InitialScope(p),
	}, nil
}

// UpdateAccount renames the caller.
func (s *AccessService) UpdateAccount(ctx context.Context, req *domain.UpdateAccountRequest) error {
	ctx, span := accessTracer.Start(ctx, "AccessService.UpdateAccount")
	defer span.End()

	p := domain.PrincipalFrom(ctx)
	if p == nil {
		return &domain.ErrUnauthorized{}
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := s.directory.UpdateProfileName(ctx, p.UserID, req.Name); err != nil {
		return fmt.Errorf("update profile name: %w", err)
	}
	s.Invalidate(p.UserID)

	s.logger.Info("account renamed", zap.String("user_id", p.UserID))
	return nil
}

func principalCacheKey(userID string) string {
	return "principal:" + userID
}

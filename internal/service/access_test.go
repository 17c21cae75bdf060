package service

import (
	"context"
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/cache"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret, sub string, ttl time.Duration) string {
	t.Helper()
	claims := SupabaseClaims{
		Email: "Ana@Firma.com.br",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAccess(dir *fakeDirectory) *AccessService {
	return NewAccessService(dir, cache.New[domain.Principal](time.Minute), observability.NewMetrics(), zap.NewNop(), testSecret)
}

func TestAuthenticate_LoadsRoleAndMemberships(t *testing.T) {
	dir := newFakeDirectory()
	def := "ws-b"
	dir.profiles["u1"] = domain.Profile{UserID: "u1", Name: "Ana", Role: domain.RoleGestor, DefaultWorkspaceID: &def}
	dir.memberships = []domain.Membership{{UserID: "u1", WorkspaceID: "ws-a"}, {UserID: "u1", WorkspaceID: "ws-b"}}

	svc := newAccess(dir)
	token := signToken(t, testSecret, "u1", time.Hour)

	p, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGestor, p.Role)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "ana@firma.com.br", p.Email)
	assert.Equal(t, "ws-b", p.DefaultWorkspaceID)
	assert.Equal(t, []string{"ws-a", "ws-b"}, p.WorkspaceIDs)
	assert.Equal(t, token, p.AccessToken)

	// Profile reads use the caller's own token.
	assert.Equal(t, []string{token}, dir.tokens)
}

func TestAuthenticate_CachesPrincipal(t *testing.T) {
	dir := newFakeDirectory()
	dir.profiles["u1"] = domain.Profile{UserID: "u1", Role: domain.RoleAssociado}
	svc := newAccess(dir)
	token := signToken(t, testSecret, "u1", time.Hour)

	for range 3 {
		_, err := svc.Authenticate(context.Background(), token)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, dir.profileReads)

	svc.Invalidate("u1")
	_, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.profileReads)
}

func TestAuthenticate_MissingProfileIsAssociado(t *testing.T) {
	svc := newAccess(newFakeDirectory())

	p, err := svc.Authenticate(context.Background(), signToken(t, testSecret, "ghost", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssociado, p.Role)
	assert.Empty(t, p.WorkspaceIDs)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	svc := newAccess(newFakeDirectory())

	tests := map[string]string{
		"wrong secret": signToken(t, "another-secret-another-secret-another", "u1", time.Hour),
		"expired":      signToken(t, testSecret, "u1", -time.Minute),
		"garbage":      "not-a-jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), token)
			var unauthorized *domain.ErrUnauthorized
			require.ErrorAs(t, err, &unauthorized)
			assert.Equal(t, "Unauthorized", err.Error())
		})
	}
}

func TestMe_AssociadoSeesOnlyMemberships(t *testing.T) {
	dir := newFakeDirectory()
	dir.workspaces = []domain.Workspace{{ID: "ws-a", Name: "Cível"}, {ID: "ws-b", Name: "Trabalhista"}, {ID: "ws-m", Name: "Matriz", IsMatrix: true}}
	svc := newAccess(dir)

	ctx := domain.WithPrincipal(context.Background(), &domain.Principal{UserID: "u2", Role: domain.RoleAssociado, WorkspaceIDs: []string{"ws-b"}})
	me, err := svc.Me(ctx)
	require.NoError(t, err)
	require.Len(t, me.Workspaces, 1)
	assert.Equal(t, "ws-b", me.Workspaces[0].ID)
	assert.Equal(t, "ws-b", me.InitialScope)

	me, err = svc.Me(gestorCtx("u1"))
	require.NoError(t, err)
	assert.Len(t, me.Workspaces, 3)
	assert.Equal(t, domain.ScopeAll, me.InitialScope)
}

func TestUpdateAccount(t *testing.T) {
	dir := newFakeDirectory()
	svc := newAccess(dir)

	err := svc.UpdateAccount(gestorCtx("u1"), &domain.UpdateAccountRequest{Name: "  "})
	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	require.NoError(t, svc.UpdateAccount(gestorCtx("u1"), &domain.UpdateAccountRequest{Name: " Dra. Ana "}))
	assert.Equal(t, "Dra. Ana", dir.profiles["u1"].Name)
}

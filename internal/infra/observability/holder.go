package observability

import (
	"context"

	"github.com/lexflow/lexflow-api-go/internal/domain"
)

type holderKey struct{}

type principalHolder struct {
	principal *domain.Principal
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

func principalHolderFrom(ctx context.Context) *principalHolder {
	h, _ := ctx.Value(holderKey{}).(*principalHolder)
	return h
}

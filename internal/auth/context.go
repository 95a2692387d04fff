package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
)

type ctxKey struct{}

// WithAccess returns a copy of ctx carrying ac.
func WithAccess(ctx context.Context, ac domain.AccessContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// AccessFrom returns the access context stored by WithAccess.
func AccessFrom(ctx context.Context) (domain.AccessContext, bool) {
	ac, ok := ctx.Value(ctxKey{}).(domain.AccessContext)
	return ac, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

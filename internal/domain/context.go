package domain

import "context"

// Roles carried by bearer tokens. Storefront shoppers have no role.
const (
	RoleAdmin   = "admin"
	RoleService = "service"
)

// Principal is the identity proven by a bearer token.
type Principal struct {
	UserID string
	Role   string
}

// RequestContext carries the caller identity and the sales channel of the
// request being served.
type RequestContext struct {
	UserID       string
	Role         string
	ChannelToken string
}

// Authenticated reports whether a user is logged in for this request.
func (r RequestContext) Authenticated() bool {
	return r.UserID != ""
}

// HasRole reports whether the authenticated caller holds one of roles.
func (r RequestContext) HasRole(roles ...string) bool {
	if !r.Authenticated() || r.Role == "" {
		return false
	}
	for _, role := range roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

type requestContextKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the request context stored on ctx, or an
// anonymous one.
func RequestContextFrom(ctx context.Context) RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(RequestContext)
	return rc
}

package auth

import "context"

type contextKey string

const userContextKey contextKey = "user_context"

// UserContext carries the authenticated caller through the request context
type UserContext struct {
	Subject string
	Name    string
	Roles   []string
}

// IsSystem reports whether the caller authenticated with the API key
func (u *UserContext) IsSystem() bool {
	for _, role := range u.Roles {
		if role == RoleSystem {
			return true
		}
	}
	return false
}

// WithUserContext stores the user context in the request context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserContext retrieves the user context, if any
func GetUserContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

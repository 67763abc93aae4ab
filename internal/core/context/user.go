// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated user information.
// FacilityCode identifies the health facility the user reports for; it is
// injected into outgoing requisitions as "agentCode".
type UserContext struct {
	UserID       string
	Username     string
	FacilityCode string
	FacilityName string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetFacilityCode returns the facility code of the active user, or empty string.
func GetFacilityCode(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.FacilityCode
	}
	return ""
}

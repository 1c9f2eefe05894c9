package domain

import (
	"context"
	"errors"
)

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleFinanceManager can submit every document type
	RoleFinanceManager Role = "finance_manager"

	// RoleAccountant can submit every document type
	RoleAccountant Role = "accountant"

	// RoleViewOnly can only read
	RoleViewOnly Role = "view_only"
)

var validRoles = map[Role]bool{
	RoleAdmin:          true,
	RoleFinanceManager: true,
	RoleAccountant:     true,
	RoleViewOnly:       true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanSubmit checks if the role can create or edit documents
func (r Role) CanSubmit() bool {
	return r == RoleAdmin || r == RoleFinanceManager || r == RoleAccountant
}

// User is the authenticated caller carried on the request context.
type User struct {
	ID    string
	Email string
	Role  Role
}

type userContextKey struct{}

// ContextWithUser returns a copy of ctx carrying u.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the user stored by ContextWithUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*User)
	return u, ok && u != nil
}

// ActorID returns the id of the calling user, or "system".
func ActorID(ctx context.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return "system"
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

package gate

import "context"

// Policy holds the resource-level rules for one resource type.
// Authorize returns nil to allow, or a denial (ErrNotFound, ErrForbidden...).
// For list and create actions resource is usually nil.
type Policy[U any] interface {
	Authorize(ctx context.Context, user U, action Action, resource any) error
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) error

func (f PolicyFunc[U]) Authorize(ctx context.Context, user U, action Action, resource any) error {
	return f(ctx, user, action, resource)
}

// Package gate is a small Gate/Policy authorization kernel.
//
// A Gate combines two checks:
//  1. the role gate: the user's profile must hold "resource:action";
//  2. the resource policy registered for the resource type, if any, which
//     inspects the concrete record (ownership, assignment, routing).
//
// The package knows nothing about the domain. It is generic over the user
// type so callers can authorize a bare id, a struct principal or token claims.
package gate

import "context"

// Gate is the central authorization checkpoint. U must be comparable so the
// zero value can stand for "nobody is signed in".
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register sets the policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when user may perform action on resource.
//
// The zero user yields ErrUnauthenticated. A profile lacking the permission
// yields ErrWrongRole. Otherwise the registered policy decides; resource types
// without a policy are allowed on the role gate alone.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	if err := g.authorizeProfile(ctx, user, action, resourceType); err != nil {
		return err
	}
	if policy, ok := g.policies[resourceType]; ok {
		return policy.Authorize(ctx, user, action, resource)
	}
	return nil
}

// Can is Authorize reduced to a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the role gate, without loading any record.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.authorizeProfile(ctx, user, action, resourceType) == nil
}

func (g *Gate[U]) authorizeProfile(ctx context.Context, user U, action Action, resourceType string) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return err
	}
	if profile == nil || !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrWrongRole
	}
	return nil
}

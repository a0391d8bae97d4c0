package gate

import (
	"context"
	"sort"
)

// Profile is a named set of permissions. In practice one profile per role.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves the profile a user acts under.
// A nil profile with a nil error means the user has no permissions at all.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]struct{}
}

// NewStaticProfile creates a profile granting the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]struct{}, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = struct{}{}
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions in lexical order.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission checks the requested permission, honouring wildcards.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// KeyedProfiles resolves a profile from a key derived from the user,
// typically the user's role.
type KeyedProfiles[U any] struct {
	key      func(U) string
	profiles map[string]Profile
}

// NewKeyedProfiles builds a resolver that looks profiles up by key(user).
func NewKeyedProfiles[U any](key func(U) string, profiles ...Profile) *KeyedProfiles[U] {
	r := &KeyedProfiles[U]{key: key, profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.Name()] = p
	}
	return r
}

// Resolve returns the profile registered under key(user), or nil.
func (r *KeyedProfiles[U]) Resolve(_ context.Context, user U) (Profile, error) {
	if p, ok := r.profiles[r.key(user)]; ok {
		return p, nil
	}
	return nil, nil
}

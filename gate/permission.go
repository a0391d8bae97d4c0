package gate

import "strings"

// Permission is an allowed action on a resource type, written "resource:action"
// (e.g. "journal:create", "alert:resolve").
type Permission string

// NewPermission builds a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	resourceType, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return resourceType, Action(act)
}

const (
	Wildcard                 = "*"
	PermissionAll Permission = "*:*"
)

// Matches reports whether p grants the requested permission.
// "*:*" grants everything and "journal:*" grants every journal action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Parse()
	if res == "" || string(act) != Wildcard {
		return false
	}
	reqRes, _ := requested.Parse()
	return res == reqRes
}

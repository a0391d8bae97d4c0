package gate_test

import (
	"testing"

	"github.com/psycare/psycare/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	perm := gate.NewPermission("journal", gate.ActionCreate)
	if perm != "journal:create" {
		t.Errorf("expected 'journal:create', got '%s'", perm)
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("alert:resolve").Parse()
	if res != "alert" || act != gate.ActionResolve {
		t.Errorf("expected alert/resolve, got '%s'/'%s'", res, act)
	}

	res, act = gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty strings, got '%s' and '%s'", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		name      string
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"exact", "mood:create", "mood:create", true},
		{"other action", "mood:create", "mood:delete", false},
		{"other resource", "mood:create", "journal:create", false},
		{"resource wildcard", "journal:*", "journal:delete", true},
		{"resource wildcard other resource", "journal:*", "mood:delete", false},
		{"all", gate.PermissionAll, "resource:update", true},
		{"malformed grant", "journal", "journal:view", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.granted.Matches(tt.requested); got != tt.want {
				t.Errorf("%s.Matches(%s) = %v, want %v", tt.granted, tt.requested, got, tt.want)
			}
		})
	}
}

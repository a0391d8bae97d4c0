package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/psycare/psycare/gate"
)

type user struct {
	ID   uint
	Role string
}

type record struct {
	OwnerID uint
}

func ownerPolicy() gate.Policy[user] {
	return gate.PolicyFunc[user](func(_ context.Context, u user, _ gate.Action, resource any) error {
		if resource == nil {
			return nil
		}
		r, ok := resource.(*record)
		if !ok || r.OwnerID != u.ID {
			return gate.ErrNotFound
		}
		return nil
	})
}

func newGate() *gate.Gate[user] {
	profiles := gate.NewKeyedProfiles(func(u user) string { return u.Role },
		gate.NewStaticProfile("writer", "record:*"),
		gate.NewStaticProfile("reader", "record:view", "record:list"),
	)
	g := gate.New[user](profiles)
	g.Register("record", ownerPolicy())
	return g
}

func TestGate_Unauthenticated(t *testing.T) {
	g := newGate()
	err := g.Authorize(context.Background(), user{}, gate.ActionView, "record", nil)
	if !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_RoleGate(t *testing.T) {
	g := newGate()
	ctx := context.Background()
	reader := user{ID: 1, Role: "reader"}

	if err := g.Authorize(ctx, reader, gate.ActionList, "record", nil); err != nil {
		t.Errorf("reader should list records, got %v", err)
	}
	if err := g.Authorize(ctx, reader, gate.ActionDelete, "record", nil); !errors.Is(err, gate.ErrWrongRole) {
		t.Errorf("expected ErrWrongRole, got %v", err)
	}
	if err := g.Authorize(ctx, user{ID: 2, Role: "ghost"}, gate.ActionList, "record", nil); !errors.Is(err, gate.ErrWrongRole) {
		t.Errorf("unknown role should fail the role gate, got %v", err)
	}
}

func TestGate_PolicyDecides(t *testing.T) {
	g := newGate()
	ctx := context.Background()
	owner := user{ID: 7, Role: "writer"}
	other := user{ID: 8, Role: "writer"}
	rec := &record{OwnerID: 7}

	if err := g.Authorize(ctx, owner, gate.ActionUpdate, "record", rec); err != nil {
		t.Errorf("owner should update, got %v", err)
	}
	if err := g.Authorize(ctx, other, gate.ActionUpdate, "record", rec); !errors.Is(err, gate.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestGate_RoleGateRunsBeforePolicy(t *testing.T) {
	g := newGate()
	reader := user{ID: 7, Role: "reader"}
	err := g.Authorize(context.Background(), reader, gate.ActionDelete, "record", &record{OwnerID: 7})
	if !errors.Is(err, gate.ErrWrongRole) {
		t.Errorf("expected ErrWrongRole even for the owner, got %v", err)
	}
}

func TestGate_NoPolicyAllowsOnRoleGate(t *testing.T) {
	profiles := gate.NewKeyedProfiles(func(u user) string { return u.Role },
		gate.NewStaticProfile("reader", "note:view"))
	g := gate.New[user](profiles)

	if !g.Can(context.Background(), user{ID: 1, Role: "reader"}, gate.ActionView, "note", struct{}{}) {
		t.Error("expected allow when no policy is registered")
	}
}

func TestGate_CanProfile(t *testing.T) {
	g := newGate()
	ctx := context.Background()
	if !g.CanProfile(ctx, user{ID: 1, Role: "writer"}, gate.ActionDelete, "record") {
		t.Error("writer should hold record:delete")
	}
	if g.CanProfile(ctx, user{}, gate.ActionView, "record") {
		t.Error("zero user should never pass")
	}
}

func TestGate_Deterministic(t *testing.T) {
	g := newGate()
	ctx := context.Background()
	u := user{ID: 8, Role: "writer"}
	rec := &record{OwnerID: 7}
	first := g.Authorize(ctx, u, gate.ActionView, "record", rec)
	for i := 0; i < 10; i++ {
		if err := g.Authorize(ctx, u, gate.ActionView, "record", rec); err != first {
			t.Fatalf("decision changed between calls: %v then %v", first, err)
		}
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{gate.ErrUnauthenticated, "unauthenticated"},
		{gate.ErrWrongRole, "wrong_role"},
		{gate.ErrForbidden, "forbidden"},
		{gate.ErrNotFound, "not_found"},
		{errors.New("boom"), ""},
	}
	for _, tt := range tests {
		if got := gate.Reason(tt.err); got != tt.want {
			t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

package models

import (
	"testing"
)

func TestOwnership(t *testing.T) {
	if got := (&JournalEntry{PatientID: 42}).GetOwnerID(); got != 42 {
		t.Errorf("JournalEntry.GetOwnerID() = %d, want 42", got)
	}
	if got := (&MoodEntry{PatientID: 7}).GetOwnerID(); got != 7 {
		t.Errorf("MoodEntry.GetOwnerID() = %d, want 7", got)
	}
	if got := (&Resource{TherapistID: 3}).GetOwnerID(); got != 3 {
		t.Errorf("Resource.GetOwnerID() = %d, want 3", got)
	}
}

func TestAlert_RoutedTo(t *testing.T) {
	tid := uint(5)
	tests := []struct {
		name  string
		alert Alert
		actor uint
		want  bool
	}{
		{"owner", Alert{TherapistID: &tid}, 5, true},
		{"other therapist", Alert{TherapistID: &tid}, 6, false},
		{"unrouted", Alert{}, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.RoutedTo(tt.actor); got != tt.want {
				t.Errorf("RoutedTo(%d) = %v, want %v", tt.actor, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Pat@Example.COM ", "pat@example.com"},
		{"pat@example.com", "pat@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoles(t *testing.T) {
	if !(&User{Role: RolePatient}).IsPatient() || (&User{Role: RoleTherapist}).IsPatient() {
		t.Error("patient role helpers are wrong")
	}
	if !ValidRole(RoleTherapist) || ValidRole("admin") {
		t.Error("ValidRole is wrong")
	}
}

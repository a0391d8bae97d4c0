package models

import "time"

// AlertKindPanic is the kind of alert raised by the crisis button.
const AlertKindPanic = "panic"

// PanicMessage is the message stored with a panic alert.
const PanicMessage = "Patient pressed the panic button."

// Assignment links a patient to a therapist. The pair is unique.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PatientID   uint      `gorm:"not null;uniqueIndex:idx_assignment_pair" json:"patient_id"`
	TherapistID uint      `gorm:"not null;uniqueIndex:idx_assignment_pair;index:idx_assignment_therapist" json:"therapist_id"`
	CreatedAt   time.Time `json:"created_at"`
	Patient     *User     `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Therapist   *User     `gorm:"foreignKey:TherapistID;constraint:OnDelete:CASCADE" json:"-"`
}

// JournalEntry is owned by one patient. Therapists see it only when it is
// shared and they are assigned to the patient.
type JournalEntry struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	PatientID           uint      `gorm:"not null;index" json:"patient_id"`
	Title               string    `gorm:"size:200;not null" json:"title"`
	Body                string    `gorm:"type:text;not null" json:"body"`
	SharedWithTherapist bool      `gorm:"not null" json:"shared_with_therapist"`
	FlaggedRisk         bool      `gorm:"not null" json:"flagged_risk"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Patient             *User     `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (j *JournalEntry) GetOwnerID() uint { return j.PatientID }

// MoodEntry is an append-only check-in.
type MoodEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"not null;index" json:"patient_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Note      string    `gorm:"size:500" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Patient   *User     `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *MoodEntry) GetOwnerID() uint { return m.PatientID }

// Alert is raised by a patient. TherapistID is the therapist linked at
// creation time, nil when the patient had none.
type Alert struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PatientID   uint       `gorm:"not null;index" json:"patient_id"`
	TherapistID *uint      `gorm:"index" json:"therapist_id"`
	Kind        string     `gorm:"size:32;not null" json:"kind"`
	Message     string     `gorm:"size:500;not null" json:"message"`
	Resolved    bool       `gorm:"not null;index" json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Patient     *User      `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Therapist   *User      `gorm:"foreignKey:TherapistID;constraint:OnDelete:SET NULL" json:"-"`
}

// RoutedTo reports whether the alert belongs to therapistID.
func (a *Alert) RoutedTo(therapistID uint) bool {
	return a.TherapistID != nil && *a.TherapistID == therapistID
}

// Resource is a reference link authored by a therapist.
type Resource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TherapistID uint      `gorm:"not null;index" json:"therapist_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	URL         string    `gorm:"size:500;not null" json:"url"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Therapist   *User     `gorm:"foreignKey:TherapistID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Resource) GetOwnerID() uint { return r.TherapistID }

// All lists every model for migrations.
func All() []any {
	return []any{&User{}, &Assignment{}, &JournalEntry{}, &MoodEntry{}, &Alert{}, &Resource{}}
}

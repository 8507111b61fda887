package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Slot statuses.
const (
	SlotOpen   = "open"
	SlotBooked = "booked"
)

// DefaultProvider covers specialties with no catalogued open slot.
const DefaultProvider = "Dr. Smith"

// Slot maps to the appointment_slots table.
type Slot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Specialty string    `db:"specialty" json:"specialty"`
	SlotStart time.Time `db:"slot_start" json:"slot_start"`
	SlotEnd   time.Time `db:"slot_end" json:"slot_end"`
	Provider  string    `db:"provider" json:"provider"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"-"`
	ScheduledStart time.Time `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd   time.Time `db:"scheduled_end" json:"scheduled_end"`
	Specialty      string    `db:"specialty" json:"specialty"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	Provider       *string   `db:"provider" json:"provider,omitempty"`
	Location       *string   `db:"location" json:"location,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// Confirmation is the tool-facing booking result.
type Confirmation struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Provider      string `json:"provider"`
}

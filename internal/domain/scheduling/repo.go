package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// SlotRepository persists bookable slots per specialty.
type SlotRepository interface {
	Insert(ctx context.Context, s *Slot) error
	NextOpenBySpecialty(ctx context.Context, specialty string) (*Slot, error)
	MarkBooked(ctx context.Context, id uuid.UUID) error
	ListBySpecialty(ctx context.Context, specialty string, limit, offset int) ([]*Slot, int, error)
}

// AppointmentRepository persists booked appointments.
type AppointmentRepository interface {
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medkit/medkit/internal/domain/patient"
	"github.com/medkit/medkit/internal/registry"
)

const defaultDuration = 30 * time.Minute

// PatientResolver finds a patient by external reference. The patient
// service satisfies it.
type PatientResolver interface {
	Resolve(ctx context.Context, ref string) (*patient.Patient, error)
}

// Service implements appointment booking against the demo slot catalogue.
type Service struct {
	slots        SlotRepository
	appointments AppointmentRepository
	patients     PatientResolver
}

func NewService(slots SlotRepository, appointments AppointmentRepository, patients PatientResolver) *Service {
	return &Service{slots: slots, appointments: appointments, patients: patients}
}

// BookingRequest is the tool-facing scheduling input.
type BookingRequest struct {
	PatientID   string `json:"patient_id"`
	Specialty   string `json:"specialty"`
	DatetimeISO string `json:"datetime_iso"`
	Reason      string `json:"reason"`
}

// Schedule books a 30 minute appointment at the requested time. When an open
// slot exists for the specialty, its provider and location are used and the
// slot is marked booked; otherwise the booking falls back to the default
// provider.
func (s *Service) Schedule(ctx context.Context, req BookingRequest) (*Confirmation, error) {
	specialty := strings.ToLower(strings.TrimSpace(req.Specialty))
	if specialty == "" {
		return nil, registry.InvalidArgsf("specialty is required")
	}
	start, err := time.Parse(time.RFC3339, req.DatetimeISO)
	if err != nil {
		return nil, registry.InvalidArgsf("datetime_iso must be RFC 3339, got %q", req.DatetimeISO)
	}

	p, err := s.patients.Resolve(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID:      p.ID,
		ScheduledStart: start.UTC(),
		ScheduledEnd:   start.UTC().Add(defaultDuration),
		Specialty:      specialty,
		Status:         StatusScheduled,
	}
	if req.Reason != "" {
		appt.Reason = &req.Reason
	}

	provider := DefaultProvider
	slot, err := s.slots.NextOpenBySpecialty(ctx, specialty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("find slot for %q: %w", specialty, err)
	default:
		provider = slot.Provider
		appt.Location = slot.Location
		if err := s.slots.MarkBooked(ctx, slot.ID); err != nil {
			return nil, fmt.Errorf("book slot: %w", err)
		}
	}
	appt.Provider = &provider

	if err := s.appointments.Insert(ctx, appt); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	return &Confirmation{
		AppointmentID: appt.ID.String(),
		Status:        appt.Status,
		Provider:      provider,
	}, nil
}

// ListSlots returns the slot catalogue, optionally filtered by specialty.
func (s *Service) ListSlots(ctx context.Context, specialty string, limit, offset int) ([]*Slot, int, error) {
	return s.slots.ListBySpecialty(ctx, specialty, limit, offset)
}

// ListAppointments returns a patient's appointments, newest first.
func (s *Service) ListAppointments(ctx context.Context, patientRef string, limit, offset int) ([]*Appointment, int, error) {
	p, err := s.patients.Resolve(ctx, patientRef)
	if err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByPatient(ctx, p.ID, limit, offset)
}

// CancelAppointment marks an appointment cancelled.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	err := s.appointments.UpdateStatus(ctx, id, StatusCancelled)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("appointment %s: %w", id, registry.ErrNotFound)
	}
	return err
}

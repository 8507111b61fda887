package patient

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists patient records.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

// VitalsRepository persists vital sign measurements.
type VitalsRepository interface {
	Insert(ctx context.Context, v *Vitals) error
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Vitals, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Vitals, int, error)
}

// ProfileRepository reads and mutates the medical profile rows.
type ProfileRepository interface {
	Conditions(ctx context.Context, patientID uuid.UUID) ([]*Condition, error)
	Allergies(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error)
	Medications(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	AddCondition(ctx context.Context, c *Condition) error
	AddAllergy(ctx context.Context, a *Allergy) error
	AddMedication(ctx context.Context, m *Medication) error
}

// LinkRepository manages patient-user links.
type LinkRepository interface {
	// Upsert inserts or updates the link for the unique (patient_id, user_id)
	// pair, refreshing the role.
	Upsert(ctx context.Context, l *UserLink) error
	GetByPair(ctx context.Context, patientID, userID uuid.UUID) (*UserLink, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*UserLink, error)
}

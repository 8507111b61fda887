package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medkit/medkit/internal/registry"
)

// Service implements patient lookup, vitals, profile, linking, and the
// Patient360 aggregation.
type Service struct {
	patients PatientRepository
	vitals   VitalsRepository
	profiles ProfileRepository
	links    LinkRepository
	now      func() time.Time
}

func NewService(patients PatientRepository, vitals VitalsRepository, profiles ProfileRepository, links LinkRepository) *Service {
	return &Service{
		patients: patients,
		vitals:   vitals,
		profiles: profiles,
		links:    links,
		now:      time.Now,
	}
}

// Resolve finds a patient by external reference: a UUID row id or an MRN.
func (s *Service) Resolve(ctx context.Context, ref string) (*Patient, error) {
	if ref == "" {
		return nil, registry.InvalidArgsf("patient_id is required")
	}
	var (
		p   *Patient
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		p, err = s.patients.GetByID(ctx, id)
	} else {
		p, err = s.patients.GetByMRN(ctx, ref)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %q: %w", ref, registry.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve patient %q: %w", ref, err)
	}
	return p, nil
}

// GetPatient returns the lightweight patient summary.
func (s *Service) GetPatient(ctx context.Context, ref string) (*Summary, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	sum := p.Summarize(s.now())
	return &sum, nil
}

// LatestVitals returns the newest vitals row for a patient. A patient with no
// recorded measurements gets an empty reading stamped now.
func (s *Service) LatestVitals(ctx context.Context, ref string) (*Vitals, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	v, err := s.vitals.LatestByPatient(ctx, p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Vitals{PatientID: p.ID, TimestampUTC: s.now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest vitals: %w", err)
	}
	return v, nil
}

// RecordVitals stores a new measurement row.
func (s *Service) RecordVitals(ctx context.Context, ref string, v *Vitals) error {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	v.PatientID = p.ID
	if v.TimestampUTC.IsZero() {
		v.TimestampUTC = s.now().UTC()
	}
	return s.vitals.Insert(ctx, v)
}

// ListVitals returns the measurement history, newest first.
func (s *Service) ListVitals(ctx context.Context, ref string, limit, offset int) ([]*Vitals, int, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, 0, err
	}
	return s.vitals.ListByPatient(ctx, p.ID, limit, offset)
}

// MedicalProfile flattens the profile rows into the tool-facing shape.
func (s *Service) MedicalProfile(ctx context.Context, ref string) (*Profile, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, p.ID)
}

func (s *Service) profileFor(ctx context.Context, patientID uuid.UUID) (*Profile, error) {
	conditions, err := s.profiles.Conditions(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load conditions: %w", err)
	}
	allergies, err := s.profiles.Allergies(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load allergies: %w", err)
	}
	medications, err := s.profiles.Medications(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}

	profile := &Profile{
		Conditions:  []string{},
		Allergies:   []string{},
		Medications: []string{},
	}
	for _, c := range conditions {
		profile.Conditions = append(profile.Conditions, c.Name)
	}
	for _, a := range allergies {
		profile.Allergies = append(profile.Allergies, a.Substance)
	}
	for _, m := range medications {
		profile.Medications = append(profile.Medications, formatMedication(m))
	}
	return profile, nil
}

func formatMedication(m *Medication) string {
	parts := []string{m.DrugName}
	if m.Dose != nil && *m.Dose != "" {
		parts = append(parts, *m.Dose)
	}
	if m.Frequency != nil && *m.Frequency != "" {
		parts = append(parts, *m.Frequency)
	}
	return strings.Join(parts, " ")
}

// LinkUser links a patient to a user account. The operation is idempotent on
// the (patient, user) pair; relinking updates the role.
func (s *Service) LinkUser(ctx context.Context, patientRef string, userID uuid.UUID, role string) (*UserLink, error) {
	switch role {
	case RoleOwner, RoleCaregiver, RoleProxy:
	case "":
		role = RoleOwner
	default:
		return nil, registry.InvalidArgsf("role must be OWNER, CAREGIVER, or PROXY, got %q", role)
	}
	p, err := s.Resolve(ctx, patientRef)
	if err != nil {
		return nil, err
	}
	link := &UserLink{PatientID: p.ID, UserID: userID, Role: role}
	if err := s.links.Upsert(ctx, link); err != nil {
		return nil, fmt.Errorf("link patient to user: %w", err)
	}
	return link, nil
}

// Patient360 aggregates summary, latest vitals, and profile in one call.
func (s *Service) Patient360(ctx context.Context, ref string) (*Patient360, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	vitals, err := s.vitals.LatestByPatient(ctx, p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		vitals = &Vitals{PatientID: p.ID, TimestampUTC: s.now().UTC()}
	} else if err != nil {
		return nil, fmt.Errorf("latest vitals: %w", err)
	}

	profile, err := s.profileFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &Patient360{
		Patient:     p.Summarize(s.now()),
		Vitals:      vitals,
		Profile:     *profile,
		LastUpdated: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// -- CRUD used by the REST surface --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return registry.InvalidArgsf("first_name and last_name are required")
	}
	if p.Sex == "" {
		p.Sex = SexUnknown
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) AddCondition(ctx context.Context, ref string, c *Condition) error {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	c.PatientID = p.ID
	return s.profiles.AddCondition(ctx, c)
}

func (s *Service) AddAllergy(ctx context.Context, ref string, a *Allergy) error {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	a.PatientID = p.ID
	return s.profiles.AddAllergy(ctx, a)
}

func (s *Service) AddMedication(ctx context.Context, ref string, m *Medication) error {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	m.PatientID = p.ID
	return s.profiles.AddMedication(ctx, m)
}

package drug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medkit/medkit/internal/domain/patient"
	"github.com/medkit/medkit/internal/registry"
)

type memDrugRepo struct {
	byName map[string]*Drug
}

func newMemDrugRepo() *memDrugRepo { return &memDrugRepo{byName: map[string]*Drug{}} }

func (r *memDrugRepo) Upsert(_ context.Context, d *Drug) error {
	d.DrugName = strings.ToLower(strings.TrimSpace(d.DrugName))
	if existing, ok := r.byName[d.DrugName]; ok {
		d.ID = existing.ID
	} else if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.byName[d.DrugName] = d
	return nil
}

func (r *memDrugRepo) GetByName(_ context.Context, name string) (*Drug, error) {
	d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (r *memDrugRepo) GetByID(_ context.Context, id uuid.UUID) (*Drug, error) {
	for _, d := range r.byName {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDrugRepo) List(_ context.Context, limit, offset int) ([]*Drug, int, error) {
	var all []*Drug
	for _, d := range r.byName {
		all = append(all, d)
	}
	return all, len(all), nil
}

type memInteractionRepo struct {
	byPair map[string]*Interaction
}

func newMemInteractionRepo() *memInteractionRepo {
	return &memInteractionRepo{byPair: map[string]*Interaction{}}
}

func pairKey(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + "/" + b.String()
	}
	return b.String() + "/" + a.String()
}

func (r *memInteractionRepo) Upsert(_ context.Context, i *Interaction) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.byPair[pairKey(i.PrimaryDrugID, i.InteractingDrugID)] = i
	return nil
}

func (r *memInteractionRepo) GetByPair(_ context.Context, a, b uuid.UUID) (*Interaction, error) {
	i, ok := r.byPair[pairKey(a, b)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return i, nil
}

func (r *memInteractionRepo) List(_ context.Context, limit, offset int) ([]*Interaction, int, error) {
	var all []*Interaction
	for _, i := range r.byPair {
		all = append(all, i)
	}
	return all, len(all), nil
}

type memAlternativeRepo struct {
	byIndication map[string][]*Alternative
}

func newMemAlternativeRepo() *memAlternativeRepo {
	return &memAlternativeRepo{byIndication: map[string][]*Alternative{}}
}

func (r *memAlternativeRepo) Upsert(_ context.Context, a *Alternative) error {
	a.Indication = strings.ToLower(strings.TrimSpace(a.Indication))
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.byIndication[a.Indication] = append(r.byIndication[a.Indication], a)
	return nil
}

func (r *memAlternativeRepo) ListByIndication(_ context.Context, indication string) ([]*Alternative, error) {
	return r.byIndication[strings.ToLower(strings.TrimSpace(indication))], nil
}

// stubProfiles serves a fixed summary and profile for every reference.
type stubProfiles struct {
	summary patient.Summary
	profile patient.Profile
}

func (s *stubProfiles) GetPatient(_ context.Context, ref string) (*patient.Summary, error) {
	if ref == "" {
		return nil, registry.InvalidArgsf("patient_id is required")
	}
	sum := s.summary
	return &sum, nil
}

func (s *stubProfiles) MedicalProfile(_ context.Context, ref string) (*patient.Profile, error) {
	p := s.profile
	return &p, nil
}

func strp(s string) *string { return &s }

func newTestDrugService(t *testing.T, profiles ProfileSource) *Service {
	t.Helper()
	drugs := newMemDrugRepo()
	interactions := newMemInteractionRepo()
	alternatives := newMemAlternativeRepo()

	ibuprofen := &Drug{
		DrugName:          "ibuprofen",
		DrugClass:         strp("NSAID"),
		Indications:       []string{"pain", "fever", "inflammation"},
		Contraindications: []string{"Active GI bleed"},
	}
	warfarin := &Drug{
		DrugName:          "warfarin",
		DrugClass:         strp("Vitamin K antagonist anticoagulant"),
		Indications:       []string{"thromboembolism prevention"},
		Contraindications: []string{"Pregnancy (X)", "Hemorrhagic tendencies"},
	}
	lisinopril := &Drug{
		DrugName:    "lisinopril",
		DrugClass:   strp("ACE inhibitor"),
		Indications: []string{"hypertension", "heart failure"},
	}
	spironolactone := &Drug{
		DrugName:          "spironolactone",
		DrugClass:         strp("Potassium-sparing diuretic"),
		Indications:       []string{"heart failure", "hypertension", "hyperaldosteronism"},
		Contraindications: []string{"Hyperkalemia", "Anuria"},
	}
	ctx := context.Background()
	for _, d := range []*Drug{ibuprofen, warfarin, lisinopril, spironolactone} {
		if err := drugs.Upsert(ctx, d); err != nil {
			t.Fatalf("seed drug: %v", err)
		}
	}

	if err := interactions.Upsert(ctx, &Interaction{
		PrimaryDrugID:     ibuprofen.ID,
		InteractingDrugID: warfarin.ID,
		Severity:          SeverityMajor,
		ClinicalEffect:    strp("Increased INR/bleeding risk"),
	}); err != nil {
		t.Fatalf("seed interaction: %v", err)
	}
	if err := interactions.Upsert(ctx, &Interaction{
		PrimaryDrugID:     ibuprofen.ID,
		InteractingDrugID: lisinopril.ID,
		Severity:          SeverityModerate,
		ClinicalEffect:    strp("Attenuated BP control; risk of AKI"),
	}); err != nil {
		t.Fatalf("seed interaction: %v", err)
	}
	if err := interactions.Upsert(ctx, &Interaction{
		PrimaryDrugID:     lisinopril.ID,
		InteractingDrugID: spironolactone.ID,
		Severity:          SeverityModerate,
		ClinicalEffect:    strp("ACE inhibitor + potassium-sparing diuretic may increase risk of hyperkalemia."),
	}); err != nil {
		t.Fatalf("seed interaction: %v", err)
	}

	for _, a := range []*Alternative{
		{Indication: "pain", DrugName: "acetaminophen", Rationale: "First-line analgesic with lower GI/renal risk than NSAIDs"},
		{Indication: "pain", DrugName: "topical diclofenac", Rationale: "Topical NSAID reduces systemic exposure"},
		{Indication: "hypertension", DrugName: "amlodipine", Rationale: "Calcium channel blocker alternative to ACEI/ARB"},
	} {
		if err := alternatives.Upsert(ctx, a); err != nil {
			t.Fatalf("seed alternative: %v", err)
		}
	}

	if profiles == nil {
		profiles = &stubProfiles{
			summary: patient.Summary{PatientID: "demo-001", Age: 45, Sex: patient.SexMale},
			profile: patient.Profile{Conditions: []string{}, Allergies: []string{}, Medications: []string{}},
		}
	}
	return NewService(drugs, interactions, alternatives, profiles)
}

func TestGetInfo(t *testing.T) {
	svc := newTestDrugService(t, nil)
	ctx := context.Background()

	t.Run("Known", func(t *testing.T) {
		d, err := svc.GetInfo(ctx, "  Ibuprofen ")
		if err != nil {
			t.Fatalf("get info: %v", err)
		}
		if d.DrugName != "ibuprofen" {
			t.Errorf("DrugName = %q", d.DrugName)
		}
		if d.DrugClass == nil || *d.DrugClass != "NSAID" {
			t.Errorf("DrugClass = %v", d.DrugClass)
		}
	})

	t.Run("UnknownYieldsEmptyMonograph", func(t *testing.T) {
		d, err := svc.GetInfo(ctx, "unobtanium")
		if err != nil {
			t.Fatalf("get info: %v", err)
		}
		if d.DrugName != "unobtanium" {
			t.Errorf("DrugName = %q", d.DrugName)
		}
		if d.Indications == nil || len(d.Indications) != 0 {
			t.Errorf("Indications = %v, want empty non-nil", d.Indications)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := svc.GetInfo(ctx, "  ")
		if !errors.Is(err, registry.ErrInvalidArgs) {
			t.Errorf("expected ErrInvalidArgs, got %v", err)
		}
	})
}

func TestCheckInteractions(t *testing.T) {
	svc := newTestDrugService(t, nil)
	ctx := context.Background()

	t.Run("WorstSeverityWins", func(t *testing.T) {
		set, err := svc.CheckInteractions(ctx, []string{"ibuprofen", "warfarin", "lisinopril"})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if set.Severity != SeverityMajor {
			t.Errorf("Severity = %q, want major", set.Severity)
		}
		if len(set.Findings) != 2 {
			t.Errorf("Findings = %d, want 2", len(set.Findings))
		}
		if len(set.InteractingDrugs) != 3 {
			t.Errorf("InteractingDrugs = %v", set.InteractingDrugs)
		}
		if set.Description != "Increased INR/bleeding risk" {
			t.Errorf("Description = %q", set.Description)
		}
	})

	t.Run("AceInhibitorWithPotassiumSparingDiuretic", func(t *testing.T) {
		set, err := svc.CheckInteractions(ctx, []string{"lisinopril", "spironolactone"})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if set.Severity != SeverityModerate {
			t.Errorf("Severity = %q, want moderate", set.Severity)
		}
		if set.Description != "ACE inhibitor + potassium-sparing diuretic may increase risk of hyperkalemia." {
			t.Errorf("Description = %q", set.Description)
		}
		if len(set.Findings) != 1 {
			t.Errorf("Findings = %d, want 1", len(set.Findings))
		}
	})

	t.Run("NoInteractionsDefaults", func(t *testing.T) {
		set, err := svc.CheckInteractions(ctx, []string{"warfarin", "lisinopril"})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if set.Severity != SeverityMinor {
			t.Errorf("Severity = %q, want minor", set.Severity)
		}
		if set.Description != "No major interactions found in demo set." {
			t.Errorf("Description = %q", set.Description)
		}
		if len(set.Findings) != 0 {
			t.Errorf("Findings = %v, want none", set.Findings)
		}
	})

	t.Run("UnknownNamesSkipped", func(t *testing.T) {
		set, err := svc.CheckInteractions(ctx, []string{"ibuprofen", "unobtanium", "warfarin"})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if len(set.Findings) != 1 {
			t.Errorf("Findings = %d, want 1", len(set.Findings))
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		_, err := svc.CheckInteractions(ctx, nil)
		if !errors.Is(err, registry.ErrInvalidArgs) {
			t.Errorf("expected ErrInvalidArgs, got %v", err)
		}
	})
}

func TestContraindications(t *testing.T) {
	ctx := context.Background()

	t.Run("AllergyAgainstClass", func(t *testing.T) {
		svc := newTestDrugService(t, &stubProfiles{
			summary: patient.Summary{PatientID: "demo-001", Age: 45, Sex: patient.SexMale},
			profile: patient.Profile{
				Conditions: []string{},
				Allergies:  []string{"NSAID"},
			},
		})
		report, err := svc.Contraindications(ctx, "ibuprofen", "demo-001")
		if err != nil {
			t.Fatalf("contraindications: %v", err)
		}
		if report.Severity != "high" {
			t.Errorf("Severity = %q, want high", report.Severity)
		}
		if len(report.Reasons) != 1 || report.Reasons[0] != "Allergy: NSAID" {
			t.Errorf("Reasons = %v", report.Reasons)
		}
	})

	t.Run("ConditionAgainstMonograph", func(t *testing.T) {
		svc := newTestDrugService(t, &stubProfiles{
			summary: patient.Summary{PatientID: "demo-002", Age: 50, Sex: patient.SexFemale},
			profile: patient.Profile{
				Conditions: []string{"pregnancy"},
				Allergies:  []string{},
			},
		})
		report, err := svc.Contraindications(ctx, "warfarin", "demo-002")
		if err != nil {
			t.Fatalf("contraindications: %v", err)
		}
		if report.Severity != "high" {
			t.Errorf("Severity = %q, want high", report.Severity)
		}
		if len(report.Reasons) != 1 || report.Reasons[0] != "Condition: pregnancy" {
			t.Errorf("Reasons = %v", report.Reasons)
		}
	})

	t.Run("ElderlyNSAID", func(t *testing.T) {
		svc := newTestDrugService(t, &stubProfiles{
			summary: patient.Summary{PatientID: "demo-002", Age: 72, Sex: patient.SexFemale},
			profile: patient.Profile{Conditions: []string{}, Allergies: []string{}},
		})
		report, err := svc.Contraindications(ctx, "ibuprofen", "demo-002")
		if err != nil {
			t.Fatalf("contraindications: %v", err)
		}
		if report.Severity != "high" {
			t.Errorf("Severity = %q, want high", report.Severity)
		}
		if len(report.Reasons) != 1 {
			t.Errorf("Reasons = %v", report.Reasons)
		}
	})

	t.Run("Clean", func(t *testing.T) {
		svc := newTestDrugService(t, nil)
		report, err := svc.Contraindications(ctx, "lisinopril", "demo-001")
		if err != nil {
			t.Fatalf("contraindications: %v", err)
		}
		if report.Severity != "none" {
			t.Errorf("Severity = %q, want none", report.Severity)
		}
		if len(report.Reasons) != 0 {
			t.Errorf("Reasons = %v, want none", report.Reasons)
		}
	})
}

func TestAlternatives(t *testing.T) {
	svc := newTestDrugService(t, nil)
	ctx := context.Background()

	t.Run("ByIndication", func(t *testing.T) {
		alts, err := svc.Alternatives(ctx, "ibuprofen")
		if err != nil {
			t.Fatalf("alternatives: %v", err)
		}
		if len(alts) != 2 {
			t.Fatalf("got %d alternatives, want 2", len(alts))
		}
		names := map[string]bool{}
		for _, a := range alts {
			names[a.DrugName] = true
		}
		if !names["acetaminophen"] || !names["topical diclofenac"] {
			t.Errorf("alternatives = %v", names)
		}
	})

	t.Run("FallbackConsultFormulary", func(t *testing.T) {
		alts, err := svc.Alternatives(ctx, "unobtanium")
		if err != nil {
			t.Fatalf("alternatives: %v", err)
		}
		if len(alts) != 1 {
			t.Fatalf("got %d alternatives, want 1", len(alts))
		}
		if alts[0].DrugName != "Consult formulary" {
			t.Errorf("DrugName = %q", alts[0].DrugName)
		}
		if alts[0].Rationale != "No demo alternatives known; consult local guidelines." {
			t.Errorf("Rationale = %q", alts[0].Rationale)
		}
	})
}

func TestWorstSeverity(t *testing.T) {
	if got := WorstSeverity(SeverityMinor, SeverityMajor); got != SeverityMajor {
		t.Errorf("WorstSeverity = %q", got)
	}
	if got := WorstSeverity(SeverityContraindicated, SeverityModerate); got != SeverityContraindicated {
		t.Errorf("WorstSeverity = %q", got)
	}
}

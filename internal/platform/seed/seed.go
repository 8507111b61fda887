package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/medkit/medkit/internal/domain/drug"
	"github.com/medkit/medkit/internal/domain/patient"
	"github.com/medkit/medkit/internal/domain/scheduling"
	"github.com/medkit/medkit/internal/domain/triage"
	"github.com/medkit/medkit/internal/platform/db"
)

// Seeder loads the demo records: two patients with vitals and profiles,
// the drug monographs with their interactions, alternatives, knowledge base
// documents, and open appointment slots. Running it twice is safe.
type Seeder struct {
	pool         *pgxpool.Pool
	patients     patient.PatientRepository
	vitals       patient.VitalsRepository
	profiles     patient.ProfileRepository
	drugs        drug.DrugRepository
	interactions drug.InteractionRepository
	alternatives drug.AlternativeRepository
	docs         triage.DocRepository
	slots        scheduling.SlotRepository
}

func New(pool *pgxpool.Pool) *Seeder {
	return &Seeder{
		pool:         pool,
		patients:     patient.NewPatientRepoPG(pool),
		vitals:       patient.NewVitalsRepoPG(pool),
		profiles:     patient.NewProfileRepoPG(pool),
		drugs:        drug.NewDrugRepoPG(pool),
		interactions: drug.NewInteractionRepoPG(pool),
		alternatives: drug.NewAlternativeRepoPG(pool),
		docs:         triage.NewDocRepoPG(pool),
		slots:        scheduling.NewSlotRepoPG(pool),
	}
}

// Run loads everything inside one transaction.
func (s *Seeder) Run(ctx context.Context) error {
	return db.InTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.seedPatients(ctx); err != nil {
			return fmt.Errorf("seed patients: %w", err)
		}
		if err := s.seedDrugs(ctx); err != nil {
			return fmt.Errorf("seed drugs: %w", err)
		}
		if err := s.seedKB(ctx); err != nil {
			return fmt.Errorf("seed kb docs: %w", err)
		}
		if err := s.seedSlots(ctx); err != nil {
			return fmt.Errorf("seed slots: %w", err)
		}
		log.Info().Msg("demo data seeded")
		return nil
	})
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func (s *Seeder) seedPatients(ctx context.Context) error {
	now := time.Now().UTC()

	demo1, err := s.ensurePatient(ctx, &patient.Patient{
		FirstName:   "Daniel",
		LastName:    "Osei",
		DateOfBirth: time.Date(now.Year()-45, time.March, 15, 0, 0, 0, 0, time.UTC),
		Sex:         patient.SexMale,
		MRN:         strPtr("demo-001"),
	})
	if err != nil {
		return err
	}
	if demo1 != nil {
		if err := s.vitals.Insert(ctx, &patient.Vitals{
			PatientID:     demo1.ID,
			TimestampUTC:  now.Add(-1 * time.Hour),
			SystolicMmHg:  intPtr(162),
			DiastolicMmHg: intPtr(98),
			HeartRateBPM:  intPtr(88),
			RespRateMin:   intPtr(18),
			TemperatureC:  floatPtr(36.8),
			SpO2Percent:   floatPtr(97.0),
			WeightKg:      floatPtr(82),
			HeightCm:      floatPtr(178),
			BMI:           floatPtr(25.9),
		}); err != nil {
			return err
		}
		if err := s.profiles.AddCondition(ctx, &patient.Condition{
			PatientID: demo1.ID, Name: "Hypertension", Code: strPtr("I10"),
		}); err != nil {
			return err
		}
		if err := s.profiles.AddAllergy(ctx, &patient.Allergy{
			PatientID: demo1.ID, Substance: "penicillin",
			Reaction: strPtr("rash"), Severity: strPtr("mild"),
		}); err != nil {
			return err
		}
		if err := s.profiles.AddMedication(ctx, &patient.Medication{
			PatientID: demo1.ID, DrugName: "lisinopril",
			Dose: strPtr("10 mg"), Route: strPtr("oral"), Frequency: strPtr("daily"),
		}); err != nil {
			return err
		}
	}

	demo2, err := s.ensurePatient(ctx, &patient.Patient{
		FirstName:   "Margaret",
		LastName:    "Whitfield",
		DateOfBirth: time.Date(now.Year()-72, time.June, 2, 0, 0, 0, 0, time.UTC),
		Sex:         patient.SexFemale,
		MRN:         strPtr("demo-002"),
	})
	if err != nil {
		return err
	}
	if demo2 != nil {
		if err := s.vitals.Insert(ctx, &patient.Vitals{
			PatientID:     demo2.ID,
			TimestampUTC:  now.Add(-24 * time.Hour),
			SystolicMmHg:  intPtr(128),
			DiastolicMmHg: intPtr(78),
			HeartRateBPM:  intPtr(72),
			RespRateMin:   intPtr(16),
			TemperatureC:  floatPtr(36.7),
			SpO2Percent:   floatPtr(98.0),
			WeightKg:      floatPtr(64),
			HeightCm:      floatPtr(162),
			BMI:           floatPtr(24.4),
		}); err != nil {
			return err
		}
		if err := s.profiles.AddCondition(ctx, &patient.Condition{
			PatientID: demo2.ID, Name: "Osteoarthritis",
		}); err != nil {
			return err
		}
		if err := s.profiles.AddMedication(ctx, &patient.Medication{
			PatientID: demo2.ID, DrugName: "warfarin",
			Dose: strPtr("5 mg"), Route: strPtr("oral"), Frequency: strPtr("daily"),
		}); err != nil {
			return err
		}
	}
	return nil
}

// ensurePatient creates the patient unless the MRN is already present.
// Returns nil when the patient (and so its dependent rows) already exists.
func (s *Seeder) ensurePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	existing, err := s.patients.GetByMRN(ctx, *p.MRN)
	if err == nil {
		log.Debug().Str("mrn", *p.MRN).Str("id", existing.ID.String()).Msg("patient already seeded")
		return nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// interactionDef declares a demo interaction by drug name; seeding resolves
// the names against the monographs inserted in the same run.
type interactionDef struct {
	Primary     string
	Interacting string
	Severity    string
	Mechanism   string
	Effect      string
	Management  string
	Refs        []string
}

func demoDrugs() []*drug.Drug {
	return []*drug.Drug{
		{
			DrugName:              "ibuprofen",
			BrandNames:            []string{"Advil", "Motrin"},
			DrugClass:             strPtr("NSAID"),
			Mechanism:             strPtr("Non-selective COX inhibitor; analgesic and anti-inflammatory"),
			ATCCodes:              []string{"M01AE01"},
			Indications:           []string{"pain", "fever", "inflammation"},
			Contraindications:     []string{"Active GI bleed"},
			Warnings:              []string{"Use caution in renal or hepatic impairment"},
			PregnancyCategory:     strPtr("C"),
			Lactation:             strPtr("Compatible with breastfeeding; monitor infant for GI upset"),
			RenalAdjustment:       strPtr("Avoid in severe renal impairment"),
			HepaticAdjustment:     strPtr("Use with caution"),
			CommonAdverseEffects:  []string{"dyspepsia", "nausea", "headache"},
			SeriousAdverseEffects: []string{"GI bleeding", "renal failure"},
			ReferenceURLs:         []string{"https://www.ncbi.nlm.nih.gov/books/NBK547742/"},
		},
		{
			DrugName:              "warfarin",
			BrandNames:            []string{"Coumadin"},
			DrugClass:             strPtr("Vitamin K antagonist anticoagulant"),
			Mechanism:             strPtr("Inhibits vitamin K epoxide reductase complex 1"),
			ATCCodes:              []string{"B01AA03"},
			Indications:           []string{"thromboembolism prevention"},
			Contraindications:     []string{"Pregnancy (X)", "Hemorrhagic tendencies"},
			Warnings:              []string{"Many drug-drug and diet interactions"},
			PregnancyCategory:     strPtr("X"),
			Lactation:             strPtr("Use with caution; monitor infant"),
			RenalAdjustment:       strPtr("No adjustment; monitor INR closely"),
			HepaticAdjustment:     strPtr("Use with caution"),
			CommonAdverseEffects:  []string{"bleeding", "bruising"},
			SeriousAdverseEffects: []string{"major bleeding"},
			ReferenceURLs:         []string{"https://www.ncbi.nlm.nih.gov/books/NBK470313/"},
		},
		{
			DrugName:              "lisinopril",
			BrandNames:            []string{"Prinivil", "Zestril"},
			DrugClass:             strPtr("ACE inhibitor"),
			Mechanism:             strPtr("Inhibits ACE; reduces angiotensin II"),
			ATCCodes:              []string{"C09AA03"},
			Indications:           []string{"hypertension", "heart failure"},
			Contraindications:     []string{"History of angioedema related to previous ACE inhibitor treatment"},
			Warnings:              []string{"Hyperkalemia risk, renal dysfunction"},
			PregnancyCategory:     strPtr("D"),
			Lactation:             strPtr("Use with caution"),
			RenalAdjustment:       strPtr("Adjust dose based on renal function"),
			HepaticAdjustment:     strPtr("No adjustment"),
			CommonAdverseEffects:  []string{"cough", "dizziness"},
			SeriousAdverseEffects: []string{"angioedema", "renal failure"},
			ReferenceURLs:         []string{"https://www.ncbi.nlm.nih.gov/books/NBK482230/"},
		},
		{
			DrugName:              "spironolactone",
			BrandNames:            []string{"Aldactone"},
			DrugClass:             strPtr("Potassium-sparing diuretic"),
			Mechanism:             strPtr("Aldosterone receptor antagonist in the distal nephron"),
			ATCCodes:              []string{"C03DA01"},
			Indications:           []string{"heart failure", "hypertension", "hyperaldosteronism"},
			Contraindications:     []string{"Hyperkalemia", "Anuria"},
			Warnings:              []string{"Hyperkalemia risk, especially with ACE inhibitors or ARBs"},
			PregnancyCategory:     strPtr("C"),
			Lactation:             strPtr("Use with caution"),
			RenalAdjustment:       strPtr("Avoid in severe renal impairment"),
			HepaticAdjustment:     strPtr("Use with caution"),
			CommonAdverseEffects:  []string{"hyperkalemia", "gynecomastia"},
			SeriousAdverseEffects: []string{"severe hyperkalemia"},
			ReferenceURLs:         []string{"https://www.ncbi.nlm.nih.gov/books/NBK554421/"},
		},
	}
}

func demoInteractions() []interactionDef {
	return []interactionDef{
		{
			Primary:     "ibuprofen",
			Interacting: "warfarin",
			Severity:    drug.SeverityMajor,
			Mechanism:   "Additive anticoagulant/platelet inhibition increasing bleeding risk",
			Effect:      "Increased INR/bleeding risk",
			Management:  "Avoid combination; if necessary, close INR monitoring",
			Refs:        []string{"https://reference.medscape.com/drug-interactionchecker"},
		},
		{
			Primary:     "ibuprofen",
			Interacting: "lisinopril",
			Severity:    drug.SeverityModerate,
			Mechanism:   "NSAIDs may reduce antihypertensive effect and impair renal function",
			Effect:      "Attenuated BP control; risk of AKI",
			Management:  "Monitor BP and renal function; use lowest effective NSAID dose",
			Refs:        []string{"https://reference.medscape.com/drug-interactionchecker"},
		},
		{
			Primary:     "lisinopril",
			Interacting: "spironolactone",
			Severity:    drug.SeverityModerate,
			Mechanism:   "Additive potassium retention from ACE inhibition and aldosterone antagonism",
			Effect:      "ACE inhibitor + potassium-sparing diuretic may increase risk of hyperkalemia.",
			Management:  "Monitor serum potassium and renal function",
			Refs:        []string{"https://reference.medscape.com/drug-interactionchecker"},
		},
	}
}

func (s *Seeder) seedDrugs(ctx context.Context) error {
	drugs := demoDrugs()
	ids := make(map[string]*drug.Drug, len(drugs))
	for _, d := range drugs {
		if err := s.drugs.Upsert(ctx, d); err != nil {
			return err
		}
		ids[d.DrugName] = d
	}

	for _, def := range demoInteractions() {
		primary, ok := ids[def.Primary]
		if !ok {
			return fmt.Errorf("interaction references unknown drug %q", def.Primary)
		}
		interacting, ok := ids[def.Interacting]
		if !ok {
			return fmt.Errorf("interaction references unknown drug %q", def.Interacting)
		}
		if err := s.interactions.Upsert(ctx, &drug.Interaction{
			PrimaryDrugID:     primary.ID,
			InteractingDrugID: interacting.ID,
			Severity:          def.Severity,
			Mechanism:         strPtr(def.Mechanism),
			ClinicalEffect:    strPtr(def.Effect),
			Management:        strPtr(def.Management),
			ReferenceURLs:     def.Refs,
		}); err != nil {
			return err
		}
	}

	alternatives := []*drug.Alternative{
		{
			Indication:    "pain",
			DrugName:      "acetaminophen",
			Rationale:     "First-line analgesic with lower GI/renal risk than NSAIDs",
			Notes:         strPtr("Avoid overdose; max daily dose per local guidelines"),
			Suitability:   []string{"first-line", "OTC"},
			ReferenceURLs: []string{"https://www.ncbi.nlm.nih.gov/books/NBK482369/"},
		},
		{
			Indication:    "pain",
			DrugName:      "topical diclofenac",
			Rationale:     "Topical NSAID reduces systemic exposure",
			Notes:         strPtr("Useful for localized musculoskeletal pain"),
			Suitability:   []string{"adjunct", "localized pain"},
			ReferenceURLs: []string{"https://www.ncbi.nlm.nih.gov/books/NBK554476/"},
		},
		{
			Indication:    "hypertension",
			DrugName:      "amlodipine",
			Rationale:     "Calcium channel blocker alternative to ACEI/ARB",
			Suitability:   []string{"first-line (per context)"},
			ReferenceURLs: []string{},
		},
	}
	for _, a := range alternatives {
		if err := s.alternatives.Upsert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedKB(ctx context.Context) error {
	docs := []*triage.Doc{
		{
			Title:   "Chest pain red flags and immediate actions",
			URL:     "https://example.org/guidelines/chest-pain-red-flags",
			Snippet: "Severe chest pain, hypotension, hypoxia, or diaphoresis warrant emergency evaluation.",
			Tags:    []string{"chest pain", "emergency", "triage"},
		},
		{
			Title:   "Hypertension: initial management",
			URL:     "https://example.org/guidelines/hypertension-initial",
			Snippet: "For BP >=160/100 consider dual therapy and urgent assessment of end-organ damage.",
			Tags:    []string{"hypertension", "blood pressure", "management"},
		},
		{
			Title:   "NSAID safety profile",
			URL:     "https://example.org/drugs/nsaids-safety",
			Snippet: "Ibuprofen increases bleeding risk with anticoagulants; monitor or avoid.",
			Tags:    []string{"nsaid", "ibuprofen", "safety"},
		},
	}
	for _, d := range docs {
		if err := s.docs.Upsert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedSlots(ctx context.Context) error {
	_, total, err := s.slots.ListBySpecialty(ctx, "", 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		log.Debug().Int("slots", total).Msg("appointment slots already seeded")
		return nil
	}

	now := time.Now().UTC()
	slots := []*scheduling.Slot{
		{
			Specialty: "cardiology",
			SlotStart: now.Add(24*time.Hour + 9*time.Hour),
			SlotEnd:   now.Add(24*time.Hour + 10*time.Hour),
			Provider:  "Dr. Rivera",
			Location:  strPtr("Main Hospital - Cardiology"),
		},
		{
			Specialty: "general medicine",
			SlotStart: now.Add(48*time.Hour + 14*time.Hour),
			SlotEnd:   now.Add(48*time.Hour + 14*time.Hour + 30*time.Minute),
			Provider:  "Dr. Patel",
			Location:  strPtr("Outpatient Clinic - GM"),
		},
		{
			Specialty: "endocrinology",
			SlotStart: now.Add(72*time.Hour + 11*time.Hour),
			SlotEnd:   now.Add(72*time.Hour + 12*time.Hour),
			Provider:  "Dr. Kim",
			Location:  strPtr("Specialty Center - Endo"),
		},
	}
	for _, slot := range slots {
		if err := s.slots.Insert(ctx, slot); err != nil {
			return err
		}
	}
	return nil
}

package drug

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medkit/medkit/internal/domain/patient"
	"github.com/medkit/medkit/internal/registry"
)

// ProfileSource provides the patient summary and flattened medical profile
// for a patient reference. The patient service satisfies it.
type ProfileSource interface {
	GetPatient(ctx context.Context, ref string) (*patient.Summary, error)
	MedicalProfile(ctx context.Context, ref string) (*patient.Profile, error)
}

// Service implements monograph lookup, interaction checking,
// contraindication screening, and alternative suggestions.
type Service struct {
	drugs        DrugRepository
	interactions InteractionRepository
	alternatives AlternativeRepository
	profiles     ProfileSource
}

func NewService(drugs DrugRepository, interactions InteractionRepository, alternatives AlternativeRepository, profiles ProfileSource) *Service {
	return &Service{
		drugs:        drugs,
		interactions: interactions,
		alternatives: alternatives,
		profiles:     profiles,
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetInfo returns the monograph for a drug name. Unknown names yield an
// empty monograph rather than an error, so callers always get a stable shape.
func (s *Service) GetInfo(ctx context.Context, name string) (*Drug, error) {
	name = normalize(name)
	if name == "" {
		return nil, registry.InvalidArgsf("name is required")
	}
	d, err := s.drugs.GetByName(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmptyMonograph(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("drug info %q: %w", name, err)
	}
	return d, nil
}

// CheckInteractions screens every pair in a medication list and aggregates
// the worst severity found. Names absent from the demo set are skipped.
func (s *Service) CheckInteractions(ctx context.Context, names []string) (*InteractionSet, error) {
	if len(names) == 0 {
		return nil, registry.InvalidArgsf("drugs must be a non-empty list")
	}

	// Resolve names to known monographs, preserving the first occurrence of
	// each distinct name.
	type resolved struct {
		name string
		drug *Drug
	}
	seen := make(map[string]bool)
	var known []resolved
	for _, raw := range names {
		name := normalize(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		d, err := s.drugs.GetByName(ctx, name)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve drug %q: %w", name, err)
		}
		known = append(known, resolved{name: name, drug: d})
	}

	set := &InteractionSet{
		InteractingDrugs: []string{},
		Severity:         SeverityMinor,
		Description:      "No major interactions found in demo set.",
		Findings:         []Finding{},
	}

	involved := make(map[string]bool)
	for i := 0; i < len(known); i++ {
		for j := i + 1; j < len(known); j++ {
			inter, err := s.interactions.GetByPair(ctx, known[i].drug.ID, known[j].drug.ID)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("interaction %q/%q: %w", known[i].name, known[j].name, err)
			}
			set.Findings = append(set.Findings, Finding{
				DrugA:          known[i].name,
				DrugB:          known[j].name,
				Severity:       inter.Severity,
				Mechanism:      inter.Mechanism,
				ClinicalEffect: inter.ClinicalEffect,
				Management:     inter.Management,
			})
			involved[known[i].name] = true
			involved[known[j].name] = true
			if severityRank[inter.Severity] >= severityRank[set.Severity] {
				set.Severity = inter.Severity
				if inter.ClinicalEffect != nil && *inter.ClinicalEffect != "" {
					set.Description = *inter.ClinicalEffect
				}
			}
		}
	}

	for name := range involved {
		set.InteractingDrugs = append(set.InteractingDrugs, name)
	}
	sort.Strings(set.InteractingDrugs)
	return set, nil
}

// Contraindications screens one drug against a patient's profile: allergy
// substances are matched against the drug name and class, and documented
// conditions against the monograph contraindication list.
func (s *Service) Contraindications(ctx context.Context, drugName, patientRef string) (*ContraindicationReport, error) {
	drugName = normalize(drugName)
	if drugName == "" {
		return nil, registry.InvalidArgsf("drug is required")
	}

	summary, err := s.profiles.GetPatient(ctx, patientRef)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.MedicalProfile(ctx, patientRef)
	if err != nil {
		return nil, err
	}

	mono, err := s.drugs.GetByName(ctx, drugName)
	if errors.Is(err, pgx.ErrNoRows) {
		mono = EmptyMonograph(drugName)
	} else if err != nil {
		return nil, fmt.Errorf("drug %q: %w", drugName, err)
	}

	report := &ContraindicationReport{
		Drug:     drugName,
		Reasons:  []string{},
		Severity: "none",
	}

	class := ""
	if mono.DrugClass != nil {
		class = strings.ToLower(*mono.DrugClass)
	}
	for _, allergy := range profile.Allergies {
		a := normalize(allergy)
		if a == "" {
			continue
		}
		if strings.Contains(drugName, a) || (class != "" && strings.Contains(class, a)) {
			report.Reasons = append(report.Reasons, "Allergy: "+allergy)
		}
	}

	for _, condition := range profile.Conditions {
		c := normalize(condition)
		if c == "" {
			continue
		}
		for _, contra := range mono.Contraindications {
			if strings.Contains(strings.ToLower(contra), c) {
				report.Reasons = append(report.Reasons, "Condition: "+condition)
				break
			}
		}
	}

	if summary.Age >= 65 && strings.Contains(class, "nsaid") {
		report.Reasons = append(report.Reasons, "Elderly: higher risk of GI and renal adverse events")
	}

	if len(report.Reasons) > 0 {
		report.Severity = "high"
	}
	return report, nil
}

// Alternatives suggests substitutes for a drug by walking its monograph
// indications. Unknown drugs or drugs with no catalogued alternatives fall
// back to a single consult-formulary entry.
func (s *Service) Alternatives(ctx context.Context, drugName string) ([]*Alternative, error) {
	drugName = normalize(drugName)
	if drugName == "" {
		return nil, registry.InvalidArgsf("drug is required")
	}

	var indications []string
	mono, err := s.drugs.GetByName(ctx, drugName)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("drug %q: %w", drugName, err)
	default:
		indications = mono.Indications
	}

	var out []*Alternative
	seen := make(map[string]bool)
	for _, indication := range indications {
		alts, err := s.alternatives.ListByIndication(ctx, indication)
		if err != nil {
			return nil, fmt.Errorf("alternatives for %q: %w", indication, err)
		}
		for _, alt := range alts {
			key := normalize(alt.DrugName)
			if seen[key] || key == drugName {
				continue
			}
			seen[key] = true
			out = append(out, alt)
		}
	}

	if len(out) == 0 {
		out = []*Alternative{{
			DrugName:  "Consult formulary",
			Rationale: "No demo alternatives known; consult local guidelines.",
		}}
	}
	return out, nil
}

// ListDrugs and ListInteractions back the REST surface.
func (s *Service) ListDrugs(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	return s.drugs.List(ctx, limit, offset)
}

func (s *Service) ListInteractions(ctx context.Context, limit, offset int) ([]*Interaction, int, error) {
	return s.interactions.List(ctx, limit, offset)
}

func (s *Service) UpsertDrug(ctx context.Context, d *Drug) error {
	if strings.TrimSpace(d.DrugName) == "" {
		return registry.InvalidArgsf("drug_name is required")
	}
	return s.drugs.Upsert(ctx, d)
}

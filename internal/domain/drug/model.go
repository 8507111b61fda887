package drug

import (
	"time"

	"github.com/google/uuid"
)

// Interaction severities, weakest to strongest.
const (
	SeverityMinor           = "minor"
	SeverityModerate        = "moderate"
	SeverityMajor           = "major"
	SeverityContraindicated = "contraindicated"
)

var severityRank = map[string]int{
	SeverityMinor:           0,
	SeverityModerate:        1,
	SeverityMajor:           2,
	SeverityContraindicated: 3,
}

// WorstSeverity returns the stronger of two severities.
func WorstSeverity(a, b string) string {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// Drug maps to the drugs table: one monograph per drug name.
type Drug struct {
	ID                    uuid.UUID `db:"id" json:"-"`
	DrugName              string    `db:"drug_name" json:"drug_name"`
	DrugClass             *string   `db:"drug_class" json:"drug_class,omitempty"`
	Mechanism             *string   `db:"mechanism" json:"mechanism,omitempty"`
	PregnancyCategory     *string   `db:"pregnancy_category" json:"pregnancy_category,omitempty"`
	Lactation             *string   `db:"lactation" json:"lactation,omitempty"`
	RenalAdjustment       *string   `db:"renal_adjustment" json:"renal_adjustment,omitempty"`
	HepaticAdjustment     *string   `db:"hepatic_adjustment" json:"hepatic_adjustment,omitempty"`
	Indications           []string  `db:"indications" json:"indications"`
	Contraindications     []string  `db:"contraindications" json:"contraindications"`
	Warnings              []string  `db:"warnings" json:"warnings"`
	CommonAdverseEffects  []string  `db:"common_adverse_effects" json:"common_adverse_effects"`
	SeriousAdverseEffects []string  `db:"serious_adverse_effects" json:"serious_adverse_effects"`
	BrandNames            []string  `db:"brand_names" json:"brand_names"`
	ATCCodes              []string  `db:"atc_codes" json:"atc_codes"`
	ReferenceURLs         []string  `db:"reference_urls" json:"reference_urls"`
	CreatedAt             time.Time `db:"created_at" json:"-"`
	UpdatedAt             time.Time `db:"updated_at" json:"-"`
}

// EmptyMonograph is the zero-value monograph returned for unknown drug names.
func EmptyMonograph(name string) *Drug {
	return &Drug{
		DrugName:              name,
		Indications:           []string{},
		Contraindications:     []string{},
		Warnings:              []string{},
		CommonAdverseEffects:  []string{},
		SeriousAdverseEffects: []string{},
		BrandNames:            []string{},
		ATCCodes:              []string{},
		ReferenceURLs:         []string{},
	}
}

// Interaction maps to the drug_interactions table. The stored pair order is
// canonical (LEAST/GREATEST over the ids); callers never rely on which drug
// is "primary".
type Interaction struct {
	ID                uuid.UUID `db:"id" json:"-"`
	PrimaryDrugID     uuid.UUID `db:"primary_drug_id" json:"-"`
	InteractingDrugID uuid.UUID `db:"interacting_drug_id" json:"-"`
	Severity          string    `db:"severity" json:"severity"`
	Mechanism         *string   `db:"mechanism" json:"mechanism,omitempty"`
	ClinicalEffect    *string   `db:"clinical_effect" json:"clinical_effect,omitempty"`
	Management        *string   `db:"management" json:"management,omitempty"`
	ReferenceURLs     []string  `db:"reference_urls" json:"reference_urls,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"-"`
	UpdatedAt         time.Time `db:"updated_at" json:"-"`
}

// Finding is one matched interaction expanded with drug names.
type Finding struct {
	DrugA          string  `json:"drug_a"`
	DrugB          string  `json:"drug_b"`
	Severity       string  `json:"severity"`
	Mechanism      *string `json:"mechanism,omitempty"`
	ClinicalEffect *string `json:"clinical_effect,omitempty"`
	Management     *string `json:"management,omitempty"`
}

// InteractionSet is the tool-facing interaction summary for a medication list.
type InteractionSet struct {
	InteractingDrugs []string  `json:"interacting_drugs"`
	Severity         string    `json:"severity"`
	Description      string    `json:"description"`
	Findings         []Finding `json:"findings"`
}

// ContraindicationReport is the tool-facing contraindication check result.
type ContraindicationReport struct {
	Drug     string   `json:"drug"`
	Reasons  []string `json:"reasons"`
	Severity string   `json:"severity"`
}

// Alternative maps to the drug_alternatives table.
type Alternative struct {
	ID            uuid.UUID `db:"id" json:"-"`
	Indication    string    `db:"indication" json:"-"`
	DrugName      string    `db:"drug_name" json:"drug_name"`
	Rationale     string    `db:"rationale" json:"rationale"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	Suitability   []string  `db:"suitability" json:"suitability,omitempty"`
	ReferenceURLs []string  `db:"reference_urls" json:"reference_urls,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
}

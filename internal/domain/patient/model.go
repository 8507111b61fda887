package patient

import (
	"time"

	"github.com/google/uuid"
)

// Sex values accepted by the patients table.
const (
	SexMale     = "male"
	SexFemale   = "female"
	SexIntersex = "intersex"
	SexOther    = "other"
	SexUnknown  = "unknown"
)

// Link roles for patient_users.
const (
	RoleOwner     = "OWNER"
	RoleCaregiver = "CAREGIVER"
	RoleProxy     = "PROXY"
)

// Patient maps to the patients table.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Sex         string    `db:"sex" json:"sex"`
	MRN         *string   `db:"mrn" json:"mrn,omitempty"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Ref returns the external identifier used in tool payloads: the MRN when
// assigned, otherwise the row id.
func (p *Patient) Ref() string {
	if p.MRN != nil && *p.MRN != "" {
		return *p.MRN
	}
	return p.ID.String()
}

// Name returns the patient's display name.
func (p *Patient) Name() string {
	return p.FirstName + " " + p.LastName
}

// AgeYears computes full years between date of birth and now.
func (p *Patient) AgeYears(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Summary is the lightweight patient view returned by lookup tools.
type Summary struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
}

// Summarize builds the tool-facing view of a patient.
func (p *Patient) Summarize(now time.Time) Summary {
	return Summary{
		PatientID: p.Ref(),
		Name:      p.Name(),
		Age:       p.AgeYears(now),
		Sex:       p.Sex,
	}
}

// Vitals maps to the vitals table. All measurements are optional; a row holds
// whatever was captured at one point in time.
type Vitals struct {
	ID              uuid.UUID `db:"id" json:"-"`
	PatientID       uuid.UUID `db:"patient_id" json:"-"`
	TimestampUTC    time.Time `db:"timestamp_utc" json:"timestamp_utc"`
	SystolicMmHg    *int      `db:"systolic_mmhg" json:"systolic_mmhg,omitempty"`
	DiastolicMmHg   *int      `db:"diastolic_mmhg" json:"diastolic_mmhg,omitempty"`
	HeartRateBPM    *int      `db:"heart_rate_bpm" json:"heart_rate_bpm,omitempty"`
	RespRateMin     *int      `db:"resp_rate_min" json:"resp_rate_min,omitempty"`
	TemperatureC    *float64  `db:"temperature_c" json:"temperature_c,omitempty"`
	SpO2Percent     *float64  `db:"spo2_percent" json:"spo2_percent,omitempty"`
	WeightKg        *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCm        *float64  `db:"height_cm" json:"height_cm,omitempty"`
	BMI             *float64  `db:"bmi" json:"bmi,omitempty"`
	SerumCreatinine *float64  `db:"serum_creatinine" json:"serum_creatinine,omitempty"`
	EGFR            *float64  `db:"egfr_ml_min_1_73m2" json:"egfr_ml_min_1_73m2,omitempty"`
}

// Condition, Allergy, and Medication are the patient profile rows.
type Condition struct {
	ID         uuid.UUID `db:"id" json:"-"`
	PatientID  uuid.UUID `db:"patient_id" json:"-"`
	Name       string    `db:"name" json:"name"`
	Code       *string   `db:"code" json:"code,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

type Allergy struct {
	ID         uuid.UUID `db:"id" json:"-"`
	PatientID  uuid.UUID `db:"patient_id" json:"-"`
	Substance  string    `db:"substance" json:"substance"`
	Reaction   *string   `db:"reaction" json:"reaction,omitempty"`
	Severity   *string   `db:"severity" json:"severity,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

type Medication struct {
	ID         uuid.UUID `db:"id" json:"-"`
	PatientID  uuid.UUID `db:"patient_id" json:"-"`
	DrugName   string    `db:"drug_name" json:"drug_name"`
	Dose       *string   `db:"dose" json:"dose,omitempty"`
	Route      *string   `db:"route" json:"route,omitempty"`
	Frequency  *string   `db:"frequency" json:"frequency,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Profile is the flattened medical profile returned by tools.
type Profile struct {
	Conditions  []string `json:"conditions"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
}

// UserLink maps to the patient_users table.
type UserLink struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	LinkedAt  time.Time `db:"linked_at" json:"linked_at"`
}

// Patient360 aggregates a patient's summary, latest vitals, and profile.
type Patient360 struct {
	Patient     Summary `json:"patient"`
	Vitals      *Vitals `json:"vitals"`
	Profile     Profile `json:"profile"`
	LastUpdated string  `json:"last_updated_iso"`
}

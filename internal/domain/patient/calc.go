package patient

import "math"

// ScoreInput holds the inputs for the clinical score calculator.
type ScoreInput struct {
	Age             int     `json:"age"`
	Sex             string  `json:"sex"`
	WeightKg        float64 `json:"weight_kg"`
	HeightCm        float64 `json:"height_cm"`
	SerumCreatinine float64 `json:"serum_creatinine_mg_dl"`
}

// Scores is the calculator output.
type Scores struct {
	BMI   float64  `json:"bmi"`
	BSAm2 float64  `json:"bsa_m2"`
	CrCl  float64  `json:"creatinine_clearance_ml_min"`
	EGFR  float64  `json:"egfr_ml_min_1_73m2"`
	Notes []string `json:"notes"`
}

// CalcScores computes BMI, Mosteller BSA, Cockcroft-Gault creatinine
// clearance, and an eGFR proxy. Demo calculations, not for clinical use.
func CalcScores(in ScoreInput) Scores {
	heightM := in.HeightCm / 100.0
	bmi := 0.0
	if heightM > 0 {
		bmi = in.WeightKg / (heightM * heightM)
	}

	bsa := math.Sqrt((in.HeightCm * in.WeightKg) / 3600.0)

	// Creatinine is floored at 0.1 to avoid division blowups.
	crcl := (float64(140-in.Age) * in.WeightKg) / (72.0 * math.Max(in.SerumCreatinine, 0.1))
	if in.Sex == SexFemale {
		crcl *= 0.85
	}

	// eGFR proxy: reuse CrCl.
	egfr := crcl

	return Scores{
		BMI:   round2(bmi),
		BSAm2: round2(bsa),
		CrCl:  round1(crcl),
		EGFR:  round1(egfr),
		Notes: []string{"Demo calculations; not for clinical use."},
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

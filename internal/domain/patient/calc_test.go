package patient

import (
	"math"
	"testing"
)

func TestCalcScores(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreInput
		want Scores
	}{
		{
			name: "adult male",
			in:   ScoreInput{Age: 45, Sex: SexMale, WeightKg: 82, HeightCm: 178, SerumCreatinine: 1.0},
			want: Scores{BMI: 25.88, BSAm2: 2.01, CrCl: 108.2, EGFR: 108.2},
		},
		{
			name: "elderly female gets 0.85 factor",
			in:   ScoreInput{Age: 72, Sex: SexFemale, WeightKg: 64, HeightCm: 162, SerumCreatinine: 1.2},
			want: Scores{BMI: 24.39, BSAm2: 1.7, CrCl: 42.8, EGFR: 42.8},
		},
		{
			name: "zero height yields zero BMI",
			in:   ScoreInput{Age: 30, Sex: SexMale, WeightKg: 70, HeightCm: 0, SerumCreatinine: 1.0},
			want: Scores{BMI: 0, BSAm2: 0, CrCl: 106.9, EGFR: 106.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcScores(tt.in)
			if got.BMI != tt.want.BMI {
				t.Errorf("BMI = %v, want %v", got.BMI, tt.want.BMI)
			}
			if got.BSAm2 != tt.want.BSAm2 {
				t.Errorf("BSA = %v, want %v", got.BSAm2, tt.want.BSAm2)
			}
			if got.CrCl != tt.want.CrCl {
				t.Errorf("CrCl = %v, want %v", got.CrCl, tt.want.CrCl)
			}
			if got.EGFR != got.CrCl {
				t.Errorf("eGFR = %v, want same as CrCl %v", got.EGFR, got.CrCl)
			}
			if len(got.Notes) != 1 || got.Notes[0] != "Demo calculations; not for clinical use." {
				t.Errorf("Notes = %v", got.Notes)
			}
		})
	}
}

func TestCalcScoresCreatinineFloor(t *testing.T) {
	// A zero creatinine must not divide by zero: the floor of 0.1 applies.
	got := CalcScores(ScoreInput{Age: 30, Sex: SexMale, WeightKg: 70, HeightCm: 175, SerumCreatinine: 0})
	want := math.Round((float64(110)*70)/(72.0*0.1)*10) / 10
	if got.CrCl != want {
		t.Errorf("CrCl = %v, want %v", got.CrCl, want)
	}
}

package patient

import (
	"context"
	"encoding/json"

	"github.com/medkit/medkit/internal/registry"
)

type patientRef struct {
	PatientID string `json:"patient_id"`
}

// RegisterTools wires the patient tools into the registry.
func (s *Service) RegisterTools(reg *registry.Registry) {
	reg.MustRegister("getPatient",
		"Look up a patient by id or MRN and return a lightweight summary",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req patientRef
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.GetPatient(ctx, req.PatientID)
		})

	reg.MustRegister("getPatientVitals",
		"Return the most recent vital signs recorded for a patient",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req patientRef
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.LatestVitals(ctx, req.PatientID)
		})

	reg.MustRegister("getPatientMedicalProfile",
		"Return the patient's conditions, allergies, and medications",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req patientRef
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.MedicalProfile(ctx, req.PatientID)
		})

	reg.MustRegister("calcClinicalScores",
		"Compute BMI, Mosteller BSA, Cockcroft-Gault CrCl, and an eGFR proxy (demo only)",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var in ScoreInput
			if err := registry.Decode(args, &in); err != nil {
				return nil, err
			}
			if in.Age <= 0 {
				return nil, registry.InvalidArgsf("age must be positive")
			}
			if in.WeightKg <= 0 {
				return nil, registry.InvalidArgsf("weight_kg must be positive")
			}
			if in.HeightCm < 0 {
				return nil, registry.InvalidArgsf("height_cm must not be negative")
			}
			if in.SerumCreatinine < 0 {
				return nil, registry.InvalidArgsf("serum_creatinine_mg_dl must not be negative")
			}
			return CalcScores(in), nil
		})

	reg.MustRegister("getPatient360",
		"Aggregate a patient's summary, latest vitals, and medical profile",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req patientRef
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.Patient360(ctx, req.PatientID)
		})
}

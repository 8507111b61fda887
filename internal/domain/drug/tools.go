package drug

import (
	"context"
	"encoding/json"

	"github.com/medkit/medkit/internal/registry"
)

// RegisterTools wires the drug tools into the registry.
func (s *Service) RegisterTools(reg *registry.Registry) {
	reg.MustRegister("getDrugInfo",
		"Return the monograph for a drug name (empty monograph when unknown)",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Name string `json:"name"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.GetInfo(ctx, req.Name)
		})

	reg.MustRegister("getDrugInteractions",
		"Screen a medication list for pairwise interactions and report the worst severity",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Drugs []string `json:"drugs"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.CheckInteractions(ctx, req.Drugs)
		})

	reg.MustRegister("getDrugContraindications",
		"Screen one drug against a patient's allergies and conditions",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Drug      string `json:"drug"`
				PatientID string `json:"patient_id"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.Contraindications(ctx, req.Drug, req.PatientID)
		})

	reg.MustRegister("getDrugAlternatives",
		"Suggest therapeutic alternatives for a drug based on its indications",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Drug string `json:"drug"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.Alternatives(ctx, req.Drug)
		})
}

package triage

import (
	"context"
	"encoding/json"

	"github.com/medkit/medkit/internal/registry"
)

// RegisterTools wires the triage and knowledge base tools into the registry.
func (s *Service) RegisterTools(reg *registry.Registry) {
	reg.MustRegister("triageSymptoms",
		"Run the demo symptom rules and return an acuity with recommended steps",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Symptoms []string `json:"symptoms"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return Assess(req.Symptoms)
		})

	reg.MustRegister("searchMedicalKB",
		"Search the demo knowledge base and return the top scoring documents",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Query string `json:"query"`
				Limit int    `json:"limit"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			hits, err := s.Search(ctx, req.Query, req.Limit)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"hits": hits}, nil
		})
}

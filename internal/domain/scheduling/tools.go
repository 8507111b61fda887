package scheduling

import (
	"context"
	"encoding/json"

	"github.com/medkit/medkit/internal/registry"
)

// RegisterTools wires the scheduling tool into the registry.
func (s *Service) RegisterTools(reg *registry.Registry) {
	reg.MustRegister("scheduleAppointment",
		"Book a 30 minute appointment for a patient with a specialty at a given time",
		func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var req BookingRequest
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			return s.Schedule(ctx, req)
		})
}

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/indicatord/internal/api/models"
	"github.com/smazurov/indicatord/internal/led"
)

const apiSource = "api"

// registerLEDRoutes registers LED control endpoints
func (s *Server) registerLEDRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-led",
		Method:      http.MethodGet,
		Path:        "/api/led",
		Summary:     "Get LED State",
		Description: "Get the committed LED state, backend and breathing capabilities",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(ctx context.Context, _ *struct{}) (*models.LEDResponse, error) {
		if s.options.LED == nil {
			return nil, errLEDUnavailable()
		}
		snap, err := s.options.LED.Snapshot(ctx)
		return s.ledResponse(snap, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-pattern",
		Method:      http.MethodPut,
		Path:        "/api/led/pattern",
		Summary:     "Set LED Pattern",
		Description: "Set color and blink timing. Both periods zero gives a steady color; all colors zero turns the LED off.",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422, 503},
	}, func(ctx context.Context, input *models.LEDPatternRequest) (*models.LEDResponse, error) {
		if s.options.LED == nil {
			return nil, errLEDUnavailable()
		}
		b := input.Body
		if b.OnMs > led.MaxPeriodMs || b.OffMs > led.MaxPeriodMs {
			return nil, huma.Error400BadRequest("Blink periods must not exceed 60000 ms")
		}
		snap, err := s.options.LED.SetPattern(ctx, b.R, b.G, b.B, b.OnMs, b.OffMs, apiSource)
		return s.ledResponse(snap, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-breathing",
		Method:      http.MethodPut,
		Path:        "/api/led/breathing",
		Summary:     "Set LED Breathing",
		Description: "Enable or disable software breathing. Ignored when the backend cannot breathe.",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422, 503},
	}, func(ctx context.Context, input *models.LEDBreathingRequest) (*models.LEDResponse, error) {
		if s.options.LED == nil {
			return nil, errLEDUnavailable()
		}
		snap, err := s.options.LED.SetBreathing(ctx, input.Body.Enabled, apiSource)
		return s.ledResponse(snap, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-brightness",
		Method:      http.MethodPut,
		Path:        "/api/led/brightness",
		Summary:     "Set LED Brightness",
		Description: "Set the LED brightness level; values are clamped to 1-255",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422, 503},
	}, func(ctx context.Context, input *models.LEDBrightnessRequest) (*models.LEDResponse, error) {
		if s.options.LED == nil {
			return nil, errLEDUnavailable()
		}
		snap, err := s.options.LED.SetBrightness(ctx, input.Body.Level, apiSource)
		return s.ledResponse(snap, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-led-patterns",
		Method:      http.MethodGet,
		Path:        "/api/led/patterns",
		Summary:     "List Named Patterns",
		Description: "List the patterns defined in the pattern file",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.PatternsResponse, error) {
		resp := &models.PatternsResponse{Body: models.PatternsData{Patterns: []models.PatternData{}}}
		if s.options.Patterns == nil {
			return resp, nil
		}
		for _, p := range s.options.Patterns.List() {
			resp.Body.Patterns = append(resp.Body.Patterns, models.PatternData{
				Name:    p.Name,
				R:       p.R,
				G:       p.G,
				B:       p.B,
				OnMs:    p.OnMs,
				OffMs:   p.OffMs,
				Breathe: p.Breathe,
			})
		}
		resp.Body.Count = len(resp.Body.Patterns)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "activate-led-pattern",
		Method:      http.MethodPost,
		Path:        "/api/led/patterns/{name}/activate",
		Summary:     "Activate Named Pattern",
		Description: "Apply a named pattern. It stays active across pattern file reloads until another request replaces it.",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 503},
	}, func(ctx context.Context, input *models.ActivatePatternRequest) (*models.LEDResponse, error) {
		if s.options.LED == nil {
			return nil, errLEDUnavailable()
		}
		snap, err := s.options.LED.Activate(ctx, input.Name, apiSource)
		if errors.Is(err, led.ErrUnknownPattern) {
			return nil, huma.Error404NotFound("Pattern not found: " + input.Name)
		}
		return s.ledResponse(snap, err)
	})
}

func (s *Server) ledResponse(snap led.Snapshot, err error) (*models.LEDResponse, error) {
	if err != nil {
		s.logger.Warn("LED request not applied", "error", err)
		return nil, huma.Error503ServiceUnavailable("LED event loop unavailable", err)
	}
	st := snap.State
	return &models.LEDResponse{
		Body: models.LEDData{
			Backend:    snap.Backend,
			Style:      snap.Style.String(),
			R:          st.R,
			G:          st.G,
			B:          st.B,
			OnMs:       st.OnMs,
			OffMs:      st.OffMs,
			Breathe:    st.Breathe,
			Level:      st.Level,
			CanBreathe: snap.CanBreathe,
			BreathType: snap.BreathType.String(),
			Pattern:    snap.Pattern,
		},
	}, nil
}

func errLEDUnavailable() error {
	return huma.Error503ServiceUnavailable("LED control is disabled")
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/indicatord/internal/api/models"
)

func (s *Server) registerBacklightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-backlight",
		Method:      http.MethodGet,
		Path:        "/api/backlight",
		Summary:     "Get Backlight",
		Description: "Read the display backlight level",
		Tags:        []string{"backlight"},
		Security:    withAuth(),
		Errors:      []int{401, 500, 503},
	}, func(_ context.Context, _ *struct{}) (*models.BacklightResponse, error) {
		dev := s.options.Backlight
		if dev == nil {
			return nil, huma.Error503ServiceUnavailable("No display backlight")
		}
		level, raw, err := dev.Brightness()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to read backlight", err)
		}
		return backlightResponse(dev, level, raw), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-backlight",
		Method:      http.MethodPut,
		Path:        "/api/backlight",
		Summary:     "Set Backlight",
		Description: "Set the display backlight level 0-255. Zero turns the display off; any other level stays visible.",
		Tags:        []string{"backlight"},
		Security:    withAuth(),
		Errors:      []int{401, 422, 500, 503},
	}, func(_ context.Context, input *models.BacklightRequest) (*models.BacklightResponse, error) {
		dev := s.options.Backlight
		if dev == nil {
			return nil, huma.Error503ServiceUnavailable("No display backlight")
		}
		raw, err := dev.SetBrightness(input.Body.Level)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to set backlight", err)
		}
		return backlightResponse(dev, input.Body.Level, raw), nil
	})
}

func backlightResponse(dev BacklightDevice, level, raw int) *models.BacklightResponse {
	return &models.BacklightResponse{
		Body: models.BacklightData{
			Device: dev.Name(),
			Level:  level,
			Raw:    raw,
			Max:    dev.Max(),
		},
	}
}

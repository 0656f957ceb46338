package models

// LEDData is the committed LED state.
type LEDData struct {
	Backend    string `json:"backend" example:"vanilla" doc:"Active backend, empty when no LED was found"`
	Style      string `json:"style" example:"blink" enum:"off,static,blink,breathe" doc:"Rendering style"`
	R          int    `json:"r" example:"255" doc:"Red 0-255"`
	G          int    `json:"g" example:"0" doc:"Green 0-255"`
	B          int    `json:"b" example:"0" doc:"Blue 0-255"`
	OnMs       int    `json:"on_ms" example:"1000" doc:"On period in milliseconds"`
	OffMs      int    `json:"off_ms" example:"1000" doc:"Off period in milliseconds"`
	Breathe    bool   `json:"breathe" doc:"Whether the pattern breathes"`
	Level      int    `json:"level" example:"255" doc:"Brightness level 1-255"`
	CanBreathe bool   `json:"can_breathe" doc:"Whether software breathing is available"`
	BreathType string `json:"breath_type" example:"half-sine" enum:"none,half-sine,hard-step" doc:"Breathing ramp"`
	Pattern    string `json:"pattern,omitempty" example:"charging" doc:"Active named pattern"`
}

type LEDResponse struct {
	Body LEDData
}

type LEDPatternRequest struct {
	Body struct {
		R     int `json:"r" minimum:"0" maximum:"255" example:"255" doc:"Red 0-255"`
		G     int `json:"g" minimum:"0" maximum:"255" example:"0" doc:"Green 0-255"`
		B     int `json:"b" minimum:"0" maximum:"255" example:"0" doc:"Blue 0-255"`
		OnMs  int `json:"on_ms,omitempty" minimum:"0" example:"1000" doc:"On period in milliseconds, 0 for static"`
		OffMs int `json:"off_ms,omitempty" minimum:"0" example:"1000" doc:"Off period in milliseconds, 0 for static"`
	}
}

type LEDBreathingRequest struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"Enable software breathing"`
	}
}

type LEDBrightnessRequest struct {
	Body struct {
		Level int `json:"level" minimum:"0" maximum:"255" example:"128" doc:"Brightness level, clamped to 1-255"`
	}
}

// Named pattern models
type PatternData struct {
	Name    string `json:"name" example:"charging" doc:"Pattern name"`
	R       int    `json:"r" example:"255" doc:"Red 0-255"`
	G       int    `json:"g" example:"128" doc:"Green 0-255"`
	B       int    `json:"b" example:"0" doc:"Blue 0-255"`
	OnMs    int    `json:"on_ms" example:"1000" doc:"On period in milliseconds"`
	OffMs   int    `json:"off_ms" example:"1000" doc:"Off period in milliseconds"`
	Breathe bool   `json:"breathe" doc:"Breathe where supported"`
}

type PatternsData struct {
	Patterns []PatternData `json:"patterns" doc:"Defined patterns sorted by name"`
	Count    int           `json:"count" example:"3" doc:"Number of patterns"`
}

type PatternsResponse struct {
	Body PatternsData
}

type ActivatePatternRequest struct {
	Name string `path:"name" example:"charging" doc:"Pattern name"`
}

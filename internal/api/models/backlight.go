package models

type BacklightData struct {
	Device string `json:"device" example:"panel0-backlight" doc:"Backlight device name"`
	Level  int    `json:"level" example:"128" doc:"Level 0-255"`
	Raw    int    `json:"raw" example:"2047" doc:"Raw sysfs brightness"`
	Max    int    `json:"max" example:"4095" doc:"Raw sysfs max_brightness"`
}

type BacklightResponse struct {
	Body BacklightData
}

type BacklightRequest struct {
	Body struct {
		Level int `json:"level" minimum:"0" maximum:"255" example:"128" doc:"Level 0-255, 0 turns the display off"`
	}
}

package models

// LogLevelsData maps module names to their effective level.
type LogLevelsData struct {
	Levels map[string]string `json:"levels" doc:"Effective level per logging module"`
}

type LogLevelsResponse struct {
	Body LogLevelsData
}

// LogLevelRequest changes the level of one module.
type LogLevelRequest struct {
	Module string `path:"module" doc:"Logging module, e.g. led or sysfs"`
	Body   struct {
		Level string `json:"level" doc:"New level, empty restores the global level"`
	}
}

package logging

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sort"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Use this interface instead of *slog.Logger to decouple from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// module is one named logger and the level it filters at.
type module struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

var (
	mutex         sync.RWMutex
	modules       = make(map[string]module)
	globalConfig  = Config{Format: "text"}
	globalLevel   = &slog.LevelVar{}
	isInitialized bool
	logBuffer     *RingBuffer
	logCallback   LogCallback
)

// Initialize sets up the logging system. Loggers handed out earlier keep
// working; their levels and handlers are replaced.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	globalConfig.Modules = maps.Clone(config.Modules)
	isInitialized = true
	logBuffer = NewRingBuffer(defaultBufferSize)

	level, ok := parseLevel(config.Level)
	if !ok {
		level = slog.LevelInfo
	}
	globalLevel.Set(level)

	// Handlers created before Initialize lack the buffer and the configured format
	for name, m := range modules {
		m.level.Set(levelFor(name))
		m.logger = newModuleLogger(name, m.level)
		modules[name] = m
	}

	slog.SetDefault(slog.New(createHandler(config.Format, globalLevel)))
}

// GetBuffer returns the log ring buffer for reading historical logs.
func GetBuffer() *RingBuffer {
	mutex.RLock()
	defer mutex.RUnlock()
	return logBuffer
}

// SetLogCallback sets a callback to be called for each new log entry.
// The daemon uses it to republish entries on the event bus.
func SetLogCallback(callback LogCallback) {
	mutex.Lock()
	defer mutex.Unlock()
	logCallback = callback
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(name string) *slog.Logger {
	mutex.RLock()
	m, exists := modules[name]
	mutex.RUnlock()
	if exists {
		return m.logger
	}

	mutex.Lock()
	defer mutex.Unlock()
	if m, exists := modules[name]; exists {
		return m.logger
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(levelFor(name))
	m = module{logger: newModuleLogger(name, levelVar), level: levelVar}
	modules[name] = m
	return m.logger
}

// SetModuleLevel changes the level of one module at runtime. An empty
// level restores the global level.
func SetModuleLevel(name, level string) error {
	var parsed slog.Level
	if level != "" {
		var ok bool
		if parsed, ok = parseLevel(level); !ok {
			return fmt.Errorf("invalid log level %q", level)
		}
	}

	// Creates the module if nobody asked for it yet
	GetLogger(name)

	mutex.Lock()
	defer mutex.Unlock()
	if globalConfig.Modules == nil {
		globalConfig.Modules = make(map[string]string)
	}
	if level == "" {
		delete(globalConfig.Modules, name)
		parsed = globalLevel.Level()
	} else {
		globalConfig.Modules[name] = level
	}
	modules[name].level.Set(parsed)
	return nil
}

// ModuleLevels returns the effective level of every known module.
func ModuleLevels() map[string]string {
	mutex.RLock()
	defer mutex.RUnlock()

	levels := make(map[string]string, len(modules))
	for name, m := range modules {
		levels[name] = strings.ToLower(m.level.Level().String())
	}
	return levels
}

// ModuleNames returns the known module names in sorted order.
func ModuleNames() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// levelFor resolves the configured level of a module. Caller holds mutex.
func levelFor(name string) slog.Level {
	if !isInitialized {
		return slog.LevelInfo
	}
	if l, ok := parseLevel(globalConfig.Modules[name]); ok {
		return l
	}
	return globalLevel.Level()
}

// newModuleLogger builds a logger tagged with module=name. Caller holds mutex.
func newModuleLogger(name string, level slog.Leveler) *slog.Logger {
	format := "text"
	if isInitialized {
		format = globalConfig.Format
	}
	return slog.New(createHandler(format, level)).With("module", name)
}

// createHandler creates a slog handler with the specified format and level.
// Logs to stdout, journal (when available), and the ring buffer behind /api/logs/stream.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	var handlers []slog.Handler
	if isStdoutAvailable() {
		handlers = append(handlers, stdoutHandler)
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	// Buffer handler resolves the ring buffer and callback at write time
	handlers = append(handlers, newGlobalBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// isStdoutAvailable reports whether stdout goes to a terminal, pipe, socket or file.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

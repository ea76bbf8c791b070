// Package logger is the structured logging interface used by the
// echosounder engine and its helper packages. The default implementation
// writes JSON through log/slog, or human readable lines through console-slog
// when ENV=development.
package logger

// Level is a logging severity.
type Level int8

// Logging levels, least severe first.
const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "error"
}

// ParseLevel parses a level name as produced by Level.String. Unknown names
// yield InfoLevel and false.
func ParseLevel(s string) (Level, bool) {
	for l, name := range levelNames {
		if name == s {
			return l, true
		}
	}
	return InfoLevel, false
}

// Logger logs messages with alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// With returns a child logger that adds keyValues to every message.
	With(keyValues ...any) Logger
	Level() Level
	SetLevel(level Level)
}

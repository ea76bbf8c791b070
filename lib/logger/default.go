package logger

import "os"

var defLogger Logger = NewSlog(os.Stderr, InfoLevel)

// GetLogger returns the package default logger.
func GetLogger() Logger { return defLogger }

// SetLogger replaces the package default logger. Engines created afterwards
// use it unless given their own.
func SetLogger(l Logger) {
	if l != nil {
		defLogger = l
	}
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) { defLogger.SetLevel(level) }

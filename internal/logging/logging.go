// Package logging is the small leveled logger shared by the metric library,
// its frame sources and the command line tool.
package logging

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level controls which messages are written. Messages with a level above the
// current level are dropped.
type Level int32

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

const prefixWidth = 9 // Fits "[DEBUG] "

var currentLevel atomic.Int32

func init() { currentLevel.Store(int32(LevelError)) }

// SetLevel changes the process wide logging level.
func SetLevel(level Level) { currentLevel.Store(int32(level)) }

// CurrentLevel returns the process wide logging level.
func CurrentLevel() Level { return Level(currentLevel.Load()) }

// Enabled reports whether a message at level would be written.
func Enabled(level Level) bool { return level <= CurrentLevel() }

// String returns the bracketed prefix used for the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "[ERROR]"
	case LevelDebug:
		return "[DEBUG]"
	default:
		return "[INFO]"
	}
}

// ParseLevel converts a user supplied name into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", s)
	}
}

// Logf formats and writes a message through the standard logger when level
// is enabled.
func Logf(level Level, format string, args ...any) {
	if !Enabled(level) {
		return
	}

	padded := fmt.Sprintf("%-*s", prefixWidth, level.String())

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	log.Printf("%s%s", padded, msg)
}

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Minimal leveled logger shared by the bakehouse service and the datastore tool.
// - Debug/Info/Warn/Error/Fatal variants and Init(level)
// - For(component) returns a logger that prefixes every line with the component name

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

// SetOutput redirects all log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

func header(lvl, component string) string {
	h := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
	if component != "" {
		h += component + ": "
	}
	return h
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(l Level, lvl, component, format string, v ...interface{}) {
	if !shouldLog(l) {
		return
	}
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Printf(header(lvl, component)+format, v...)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "debug", "", format, v...) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "info", "", format, v...) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "warn", "", format, v...) }
func Errorf(format string, v ...interface{}) { output(LevelError, "error", "", format, v...) }

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Printf(header("fatal", "")+format, v...)
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	if !shouldLog(LevelInfo) {
		return
	}
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Print(header("info", "") + fmt.Sprintln(v...))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Component is a logger bound to a component name.
type Component struct {
	name string
}

// For returns a logger whose lines carry the given component name.
func For(name string) Component { return Component{name: name} }

func (c Component) Debugf(format string, v ...interface{}) {
	output(LevelDebug, "debug", c.name, format, v...)
}
func (c Component) Infof(format string, v ...interface{}) {
	output(LevelInfo, "info", c.name, format, v...)
}
func (c Component) Warnf(format string, v ...interface{}) {
	output(LevelWarn, "warn", c.name, format, v...)
}
func (c Component) Errorf(format string, v ...interface{}) {
	output(LevelError, "error", c.name, format, v...)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

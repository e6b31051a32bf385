package logbowl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Environment variable names
const (
	LogLevelEnvVar  = "SHADER_BUILDER_LOG_LEVEL"
	LogFormatEnvVar = "SHADER_BUILDER_LOG_FORMAT"
)

// Log formats
const (
	FormatEmoji = "emoji"
	FormatText  = "text"
	FormatJSON  = "json"
)

var domains = map[string]string{"system": "⚙️", "config": "🔩", "toolchain": "🧰", "compiler": "🛠️", "artifact": "🚀", "shader": "🎨", "spirv": "🔷", "bundle": "📦", "reflection": "🪞", "file": "📄", "test": "🧪", "default": "❓"}
var actions = map[string]string{"init": "🌱", "prepare": "📁", "compile": "🏗️", "run": "▶️", "relay": "📡", "validate": "🛡️", "load": "💡", "read": "📖", "write": "📝", "pack": "📦", "extract": "📤", "verify": "🔍", "scan": "🔎", "finish": "🏁", "stop": "🛑", "version": "🏷️", "info": "💡", "default": "⚙️"}
var statuses = map[string]string{"success": "✅", "failure": "❌", "error": "🔥", "warning": "⚠️", "info": "ℹ️", "debug": "🐞", "skip": "⏭️", "progress": "➡️", "complete": "🏁", "notfound": "❓", "invalid": "💢", "ok": "✅", "default": "➡️"}

func getEmoji(m map[string]string, key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return m["default"]
}

// Logger wraps hclog.Logger with a domain/action/status calling convention.
type Logger struct {
	hclog.Logger
	format string
}

// Create creates a Logger writing to stderr, configured from the environment.
func Create(name string) Logger {
	return New(name, os.Stderr)
}

// New creates a Logger writing to w. Level and format come from
// SHADER_BUILDER_LOG_LEVEL and SHADER_BUILDER_LOG_FORMAT.
func New(name string, w io.Writer) Logger {
	level := hclog.LevelFromString(strings.ToUpper(os.Getenv(LogLevelEnvVar)))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	format := strings.ToLower(os.Getenv(LogFormatEnvVar))
	switch format {
	case FormatText, FormatJSON:
	default:
		format = FormatEmoji
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     w,
		JSONFormat: format == FormatJSON,
		Color:      hclog.AutoColor,
	}
	return Logger{Logger: hclog.New(opts), format: format}
}

// Format reports the console format in effect.
func (l Logger) Format() string { return l.format }

func (l Logger) log(level hclog.Level, domain, action, status, message string, args ...interface{}) {
	switch l.format {
	case FormatText:
		l.Logger.Log(level, fmt.Sprintf("[%s] %s", strings.ToUpper(domain), message), args...)
	case FormatJSON:
		l.Logger.With("domain", domain, "action", action, "status", status).Log(level, message, args...)
	default:
		l.Logger.Log(level, fmt.Sprintf("%s %s %s %s", getEmoji(domains, domain), getEmoji(actions, action), getEmoji(statuses, status), message), args...)
	}
}

func (l Logger) Info(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Info, domain, action, status, message, args...)
}
func (l Logger) Debug(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Debug, domain, action, status, message, args...)
}
func (l Logger) Warn(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Warn, domain, action, status, message, args...)
}
func (l Logger) Error(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Error, domain, action, status, message, args...)
}

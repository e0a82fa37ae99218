package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Formatter is the interface for log formatters
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Fields is a map of structured data
type Fields map[string]any

const (
	colorReset      = "\033[0m"
	colorRed        = "\033[31m"
	colorCyan       = "\033[36m"
	colorGray       = "\033[90m"
	colorWhite      = "\033[97m"
	colorBoldRed    = "\033[1;31m"
	colorBoldYellow = "\033[1;33m"
	colorBoldCyan   = "\033[1;36m"
	colorBoldGreen  = "\033[1;32m"
)

var levelColors = map[Level]string{
	LevelTrace: colorGray,
	LevelDebug: colorBoldCyan,
	LevelInfo:  colorBoldGreen,
	LevelWarn:  colorBoldYellow,
	LevelError: colorBoldRed,
	LevelFatal: colorBoldRed,
}

// ConsoleFormatter formats logs for humans, optionally colored
type ConsoleFormatter struct {
	config *Config
}

func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

func (f *ConsoleFormatter) paint(b *strings.Builder, color, s string) {
	if f.config.EnableColors && color != "" {
		b.WriteString(color)
		b.WriteString(s)
		b.WriteString(colorReset)
		return
	}
	b.WriteString(s)
}

func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		f.paint(&b, colorGray, formatTimestamp(entry.Timestamp, f.config.TimeFormat))
		b.WriteString(" ")
	}

	f.paint(&b, levelColors[entry.Level], fmt.Sprintf("[%-5s]", entry.Level.String()))
	b.WriteString(" ")

	if f.config.EnableCaller && entry.Caller != "" {
		f.paint(&b, colorGray, "["+entry.Caller+"]")
		b.WriteString(" ")
	}

	f.paint(&b, colorWhite, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, entry.Fields[k])
		}
		b.WriteString(" ")
		f.paint(&b, colorCyan, strings.Join(pairs, " "))
	}

	if entry.Error != nil {
		b.WriteString("\n")
		f.paint(&b, colorRed, "  ╰─→ error: "+entry.Error.Error())
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONFormatter formats logs as one JSON object per line
type JSONFormatter struct {
	config *Config
}

func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := make(map[string]any, len(entry.Fields)+5)
	for k, v := range entry.Fields {
		data[k] = v
	}

	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	if f.config.EnableTimestamp {
		switch f.config.TimeFormat {
		case "unix":
			data["timestamp"] = entry.Timestamp.Unix()
		case "unixmilli":
			data["timestamp"] = entry.Timestamp.UnixMilli()
		default:
			data["timestamp"] = entry.Timestamp.Format(time.RFC3339Nano)
		}
	}
	if f.config.EnableCaller && entry.Caller != "" {
		data["caller"] = entry.Caller
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func formatTimestamp(t time.Time, format string) string {
	switch format {
	case "unix":
		return fmt.Sprintf("%d", t.Unix())
	case "unixmilli":
		return fmt.Sprintf("%d", t.UnixMilli())
	default:
		return t.Format(format)
	}
}

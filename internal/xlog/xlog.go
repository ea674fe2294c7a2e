// Package xlog configures the zerolog loggers used by the command line tools.
package xlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

//
// ---------- Config ----------

// Config selects where log lines go and how they look.
type Config struct {
	Level      string // trace, debug, info, warn, error
	File       string // optional rotated log file
	MaxSize    int    // MB per file before rotation
	MaxBackups int    // rotated files kept
	MaxAge     int    // days
	Compress   bool
	JSON       bool // force JSON on the console even on a terminal
}

var defaultConfig = Config{
	Level:      "info",
	MaxSize:    10,
	MaxBackups: 5,
	MaxAge:     7,
	Compress:   true,
}

// DefaultConfig returns the configuration used by Init.
func DefaultConfig() Config {
	return defaultConfig
}

func applyDefaults(cfg *Config) {
	if cfg.Level == "" {
		cfg.Level = defaultConfig.Level
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultConfig.MaxSize
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = defaultConfig.MaxBackups
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultConfig.MaxAge
	}
}

//
// ---------- Init ----------

// Init sets up the global logger with the default config.
func Init() {
	if err := InitWithConfig(defaultConfig); err != nil {
		panic(err)
	}
}

// InitWithConfig sets the global level and output of zerolog.
func InitWithConfig(cfg Config) error {
	applyDefaults(&cfg)

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("xlog: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = zerolog.New(Output(cfg, os.Stderr)).With().Timestamp().Logger()
	return nil
}

// New returns a child of the global logger tagged with a module name.
func New(module string) zerolog.Logger {
	return log.Logger.With().Str("module", module).Logger()
}

//
// ---------- Output ----------

// Output builds the writer for cfg. The console side is styled when console
// is a terminal. A configured file is always written as JSON.
func Output(cfg Config, console io.Writer) io.Writer {
	out := console
	if !cfg.JSON && isTerminal(console) {
		out = ConsoleWriter(console)
	}
	if cfg.File == "" {
		return out
	}
	return zerolog.MultiLevelWriter(out, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

//
// ---------- Console Formatter ----------

const (
	colorTeal   = "#3ddbd9"
	colorBlue   = "#4589ff"
	colorLight  = "#78a9ff"
	colorRed    = "#da1e28"
	colorOrange = "#ff832b"
	colorGray   = "#8d8d8d"
)

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
	fieldStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorLight))
	equalsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
)

// ConsoleWriter is a zerolog.ConsoleWriter with coloured level badges.
func ConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",

		FormatLevel: func(i any) string {
			lvl := strings.ToLower(fmt.Sprint(i))
			if len(lvl) < 3 {
				return strings.ToUpper(lvl)
			}
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(lipgloss.Color(levelColor(lvl))).
				Padding(0, 1).
				Render(strings.ToUpper(lvl[:3]))
		},

		FormatTimestamp: func(i any) string {
			return timestampStyle.Render(fmt.Sprintf("[%s]", i))
		},

		FormatFieldName: func(i any) string {
			return fieldStyle.Render(fmt.Sprint(i)) + equalsStyle.Render("=")
		},
	}
}

func levelColor(lvl string) string {
	switch lvl {
	case "debug", "trace":
		return colorTeal
	case "info":
		return colorBlue
	case "warn":
		return colorOrange
	case "error", "fatal", "panic":
		return colorRed
	default:
		return colorGray
	}
}

package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Structured logging for the OOK core, with an optional
 *		daily-rotating packet log file.
 *
 * Description:	Grounded on an APRS TNC's own packet logger for the
 *		daily-file shape (reopen when the formatted name changes),
 *		rebuilt on github.com/charmbracelet/log for the live console
 *		output instead of raw printf/text-color-set calls,
 *		and github.com/lestrrat-go/strftime for the filename pattern
 *		instead of Go's own (non-strftime) time.Format layout, so the
 *		pattern is configurable by the same %Y-%m-%d syntax the
 *		original's on-device log naming used.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is the narrow logging surface the rest of the package depends
// on, so tests can substitute a no-op or buffering implementation.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// ConsoleLogger wraps charmbracelet/log and, optionally, a daily-rotating
// packet log file named by a strftime pattern (default "%Y-%m-%d.log").
type ConsoleLogger struct {
	console *charmlog.Logger

	mu       sync.Mutex
	dir      string
	pattern  *strftime.Strftime
	file     *os.File
	fileName string
}

// NewConsoleLogger builds a logger writing to stderr at the given level.
func NewConsoleLogger(level charmlog.Level) *ConsoleLogger {
	console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return &ConsoleLogger{console: console}
}

// SetLevel changes the console's minimum emitted log level.
func (l *ConsoleLogger) SetLevel(level charmlog.Level) {
	l.console.SetLevel(level)
}

// EnableDailyFile turns on daily-rotating packet logging into dir, with
// filenames produced by the strftime pattern (e.g. "%Y-%m-%d.log").
func (l *ConsoleLogger) EnableDailyFile(dir, pattern string) error {
	f, err := strftime.New(pattern)
	if err != nil {
		return fmt.Errorf("invalid log filename pattern %q: %w", pattern, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dir = dir
	l.pattern = f
	return os.MkdirAll(dir, 0o755)
}

// LogPacket appends one line per received packet to the daily file,
// reopening it if the formatted name has changed since the last call -
// this mirrors a daily packet logger's reopen-on-date-change behavior.
func (l *ConsoleLogger) LogPacket(raw RawTimings, train Pulsetrain, meaning Meaning) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pattern == nil {
		return
	}

	now := time.Now().UTC()
	name := l.pattern.FormatString(now)
	if l.file != nil && name != l.fileName {
		l.file.Close()
		l.file = nil
	}
	if l.file == nil {
		full := filepath.Join(l.dir, name)
		f, err := os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			l.console.Errorf("could not open packet log %q: %v", full, err)
			return
		}
		l.file = f
		l.fileName = name
	}

	fmt.Fprintf(l.file, "%s\t%s\t%s\t%s\n", now.Format(time.RFC3339), raw, train, meaning)
}

// LevelFromSetting maps the 'errorlevel' setting (none/error/info/debug,
// matching original_source's own four-way log verbosity split) onto a
// charmbracelet/log level. Unrecognized or absent values default to info.
func LevelFromSetting(settings SettingsStore) charmlog.Level {
	switch settings.GetString("errorlevel", "info") {
	case "none":
		return charmlog.FatalLevel + 1
	case "error":
		return charmlog.ErrorLevel
	case "debug":
		return charmlog.DebugLevel
	default:
		return charmlog.InfoLevel
	}
}

// Close releases any open packet log file.
func (l *ConsoleLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *ConsoleLogger) Infof(format string, args ...any)  { l.console.Infof(format, args...) }
func (l *ConsoleLogger) Errorf(format string, args ...any) { l.console.Errorf(format, args...) }
func (l *ConsoleLogger) Debugf(format string, args ...any) { l.console.Debugf(format, args...) }

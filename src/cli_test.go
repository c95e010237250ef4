package ookwiz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingLogger struct {
	lines []string
}

func (l *collectingLogger) Infof(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
func (l *collectingLogger) Errorf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
func (l *collectingLogger) Debugf(format string, args ...any) {}

func newTestCLI(t *testing.T) (*CLI, *collectingLogger, SettingsStore) {
	t.Helper()
	settings := NewMemStore(t.TempDir())
	log := &collectingLogger{}
	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(settings)
	pipeline := NewPipeline(settings, radios, devices, log)
	return &CLI{Pipeline: pipeline, Settings: settings, Log: log}, log, settings
}

func TestCLISetAndGet(t *testing.T) {
	cli, log, settings := newTestCLI(t)
	cli.Feed("set radio gpiocdev;")
	assert.Equal(t, "gpiocdev", settings.GetString("radio", ""))
	assert.NotEmpty(t, log.lines)
}

func TestCLISetFlagWithNoValue(t *testing.T) {
	cli, _, settings := newTestCLI(t)
	cli.Feed("set no_noise_fix\n")
	assert.True(t, settings.IsSet("no_noise_fix"))
}

func TestCLIUnset(t *testing.T) {
	cli, _, settings := newTestCLI(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	cli.Feed("unset radio;")
	assert.False(t, settings.IsSet("radio"))
}

func TestCLISaveLoadRoundTrip(t *testing.T) {
	cli, _, settings := newTestCLI(t)
	cli.Feed("set radio gpiocdev;")
	cli.Feed("save;")
	require.NoError(t, settings.Unset("radio"))
	cli.Feed("load;")
	assert.Equal(t, "gpiocdev", settings.GetString("radio", ""))
}

func TestCLIUnknownCommand(t *testing.T) {
	cli, log, _ := newTestCLI(t)
	cli.Feed("frobnicate;")
	found := false
	for _, line := range log.lines {
		if strings.Contains(line, "Unknown command") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCLIFeedSplitsOnMultipleTerminators(t *testing.T) {
	cli, _, settings := newTestCLI(t)
	cli.Feed("set a 1;set b 2;set c 3\n")
	assert.Equal(t, "1", settings.GetString("a", ""))
	assert.Equal(t, "2", settings.GetString("b", ""))
	assert.Equal(t, "3", settings.GetString("c", ""))
}

func TestCLIFeedKeepsRFLinkPassthroughIntact(t *testing.T) {
	cli, log, _ := newTestCLI(t)
	cli.Feed("10;20;3F500000;00;\n")
	found := false
	for _, line := range log.lines {
		if strings.Contains(line, "10;20;3F500000;00;") {
			found = true
		}
	}
	assert.True(t, found, "expected the RFLink passthrough line to reach execute() intact, got: %v", log.lines)
}

func TestCLIFeedPassthroughOnlyAppliesToLeadingTenSemicolon(t *testing.T) {
	cli, _, settings := newTestCLI(t)
	cli.Feed("set a 1;set b 2\n")
	assert.Equal(t, "1", settings.GetString("a", ""))
	assert.Equal(t, "2", settings.GetString("b", ""))
}

func TestCLIHelp(t *testing.T) {
	cli, log, _ := newTestCLI(t)
	cli.Feed("help;")
	found := false
	for _, line := range log.lines {
		if strings.Contains(line, "Available commands") {
			found = true
		}
	}
	assert.True(t, found)
}

package ookwiz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistryPopulatesRadiosAndDevices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("radios:\n  - gpiocdev\ndevices:\n  - logger\n  - fixed_code\n"), 0o644))

	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(nil)
	require.NoError(t, LoadRegistry(path, radios, devices))

	assert.Contains(t, radios.List(), "gpiocdev")
	assert.Contains(t, devices.List(), "logger")
	assert.Contains(t, devices.List(), "fixed_code")
}

func TestLoadRegistryRejectsUnknownRadio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("radios:\n  - no_such_driver\n"), 0o644))

	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(nil)
	assert.Error(t, LoadRegistry(path, radios, devices))
}

func TestLoadRegistryRejectsUnknownDevice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  - no_such_plugin\n"), 0o644))

	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(nil)
	assert.Error(t, LoadRegistry(path, radios, devices))
}

func TestLoadRegistryMissingFile(t *testing.T) {
	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(nil)
	assert.Error(t, LoadRegistry("/nonexistent/registry.yaml", radios, devices))
}

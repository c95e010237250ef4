package ookwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, *fakeRadio, SettingsStore, *DeviceRegistry) {
	t.Helper()
	settings := NewMemStore(t.TempDir())
	radios := NewRadioRegistry()
	devices := NewDeviceRegistry(settings)
	driver := &fakeRadio{name: "gpiocdev"}
	radios.Add("gpiocdev", driver)
	p := NewPipeline(settings, radios, devices, &collectingLogger{})
	return p, driver, settings, devices
}

func TestPipelineSetupRequiresRadioSetting(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	err := p.Setup()
	assert.Error(t, err)
}

func TestPipelineSetupSelectsAndInitsRadio(t *testing.T) {
	p, driver, settings, _ := newTestPipeline(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	require.NoError(t, p.Setup())
	assert.Equal(t, 1, driver.initCalls)
}

func TestPipelineSimulateMeaningDeliversToDevices(t *testing.T) {
	p, driver, settings, devices := newTestPipeline(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	require.NoError(t, p.Setup())

	plugin := &stubPlugin{claims: true}
	devices.Add("stub", plugin)

	err := p.Simulate("pwm(timing 190/575, 8 bits 0xA5)")
	require.NoError(t, err)
	assert.Equal(t, 1, plugin.received)
	_ = driver
}

func TestPipelineSimulateRejectsUnrecognizedString(t *testing.T) {
	p, _, settings, _ := newTestPipeline(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	require.NoError(t, p.Setup())

	err := p.Simulate("not a known representation at all")
	assert.Error(t, err)
}

func TestPipelineTransmitTogglesRadioLevels(t *testing.T) {
	p, driver, settings, _ := newTestPipeline(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	require.NoError(t, p.Setup())

	err := p.Transmit("pwm(timing 10/20, 8 bits 0xA5)")
	require.NoError(t, err)
	assert.NotEmpty(t, driver.levels)
	assert.Equal(t, 1, driver.standby)
}

func TestPipelineOnReceiveCallbackFires(t *testing.T) {
	p, _, settings, _ := newTestPipeline(t)
	require.NoError(t, settings.Set("radio", "gpiocdev"))
	require.NoError(t, p.Setup())

	called := false
	p.OnReceive(func(raw RawTimings, train Pulsetrain, meaning Meaning) {
		called = true
	})
	require.NoError(t, p.Simulate("pwm(timing 190/575, 8 bits 0xA5)"))
	assert.True(t, called)
}

package ookwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct {
	claims   bool
	received int
}

func (p *stubPlugin) Receive(raw RawTimings, train Pulsetrain, meaning Meaning) bool {
	p.received++
	return p.claims
}

func (p *stubPlugin) Transmit(toTransmit string) bool { return false }

func TestDeviceRegistryStopsAtFirstClaim(t *testing.T) {
	d := NewDeviceRegistry(nil)
	first := &stubPlugin{claims: true}
	second := &stubPlugin{claims: true}
	d.Add("first", first)
	d.Add("second", second)

	ok := d.NewPacket(RawTimings{}, Pulsetrain{}, Meaning{})
	assert.True(t, ok)
	assert.Equal(t, 1, first.received)
	assert.Equal(t, 0, second.received, "second plugin should never see a packet the first one claimed")
}

func TestDeviceRegistryFallsThroughWhenNoneClaim(t *testing.T) {
	d := NewDeviceRegistry(nil)
	first := &stubPlugin{claims: false}
	second := &stubPlugin{claims: false}
	d.Add("first", first)
	d.Add("second", second)

	ok := d.NewPacket(RawTimings{}, Pulsetrain{}, Meaning{})
	assert.False(t, ok)
	assert.Equal(t, 1, first.received)
	assert.Equal(t, 1, second.received)
}

func TestDeviceRegistrySkipsDisabledPlugins(t *testing.T) {
	settings := NewMemStore(t.TempDir())
	require.NoError(t, settings.Set("device_first_disable", ""))

	d := NewDeviceRegistry(settings)
	first := &stubPlugin{claims: true}
	second := &stubPlugin{claims: true}
	d.Add("first", first)
	d.Add("second", second)

	ok := d.NewPacket(RawTimings{}, Pulsetrain{}, Meaning{})
	assert.True(t, ok)
	assert.Equal(t, 0, first.received, "disabled plugin should never be offered a packet")
	assert.Equal(t, 1, second.received)
}

func TestDeviceRegistryListAnnotatesDisabled(t *testing.T) {
	settings := NewMemStore(t.TempDir())
	require.NoError(t, settings.Set("device_logger_disable", ""))

	d := NewDeviceRegistry(settings)
	d.Add("logger", &stubPlugin{})

	assert.Contains(t, d.List(), "logger [disabled]")
}

func TestDeviceRegistryTransmitUnknownPlugin(t *testing.T) {
	d := NewDeviceRegistry(nil)
	err := d.Transmit("nonexistent", "pulse(100)")
	assert.Error(t, err)
}

func TestFixedCodePluginDecodesSingleElementMeaning(t *testing.T) {
	p := &FixedCodePlugin{}
	var m Meaning
	m.AddPWM(200, 600, 8, []byte{0x01}) // state bit set, house/unit zero
	ok := p.Receive(RawTimings{}, Pulsetrain{}, m)
	assert.True(t, ok)
}

func TestFixedCodePluginIgnoresMultiElementMeaning(t *testing.T) {
	p := &FixedCodePlugin{}
	var m Meaning
	m.AddPulse(100)
	m.AddGap(200)
	ok := p.Receive(RawTimings{}, Pulsetrain{}, m)
	assert.False(t, ok)
}

package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	DevicePlugin registry: offers a received packet to each
 *		registered device decoder in turn until one claims it, and
 *		routes an outbound "transmit via plugin X" request to the
 *		plugin named.
 *
 * Description:	Grounded on Device.h/Device.cpp in original_source. The
 *		original auto-registers plugins via a static-constructor
 *		trick (DEVICE_PLUGIN_START/END) because C++ has no reflection
 *		over "every type implementing this interface" - Go doesn't
 *		need that workaround, so plugins here register explicitly,
 *		typically from a registry document read by Registry (see
 *		registry.go), one of the REDESIGN FLAGS this module follows.
 *		new_packet in the original stops at the first plugin that
 *		claims the packet and skips any plugin disabled via
 *		'device_<name>_disable'; NewPacket here does the same.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"strings"
	"sync"
)

// DevicePlugin decodes (or further acts on) packets from a specific kind
// of device once OOKwiz has produced a RawTimings/Pulsetrain/Meaning
// triple, and can optionally also originate a transmission.
type DevicePlugin interface {
	// Receive is called for each packet that clears the pipeline, unless
	// a plugin registered earlier has already claimed it. It reports
	// whether the packet meant something to this plugin (claiming it).
	Receive(raw RawTimings, train Pulsetrain, meaning Meaning) bool
	// Transmit asks the plugin to build and send toTransmit in its own
	// device protocol. Plugins that are receive-only return false.
	Transmit(toTransmit string) bool
}

// DeviceRegistry holds the named, active DevicePlugins.
type DeviceRegistry struct {
	mu       sync.RWMutex
	plugins  map[string]DevicePlugin
	order    []string
	settings SettingsStore
}

// NewDeviceRegistry returns an empty registry ready for Add calls.
// settings is consulted for 'device_<name>_disable' flags; it may be nil,
// in which case no plugin is ever considered disabled.
func NewDeviceRegistry(settings SettingsStore) *DeviceRegistry {
	return &DeviceRegistry{plugins: make(map[string]DevicePlugin), settings: settings}
}

// Add registers a plugin under name, replacing any previous registration.
func (d *DeviceRegistry) Add(name string, plugin DevicePlugin) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.plugins[name]; !exists {
		d.order = append(d.order, name)
	}
	d.plugins[name] = plugin
}

// List renders every registered plugin name, comma-separated, annotating
// disabled plugins the way Device::list does.
func (d *DeviceRegistry) List() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	parts := make([]string, len(d.order))
	for n, name := range d.order {
		parts[n] = name
		if d.disabled(name) {
			parts[n] += " [disabled]"
		}
	}
	return strings.Join(parts, ", ")
}

func (d *DeviceRegistry) disabled(name string) bool {
	return d.settings != nil && d.settings.IsSet("device_"+name+"_disable")
}

// NewPacket offers a decoded packet to each enabled plugin in
// registration order, stopping as soon as one claims it. It reports
// whether any plugin did.
func (d *DeviceRegistry) NewPacket(raw RawTimings, train Pulsetrain, meaning Meaning) bool {
	d.mu.RLock()
	order := append([]string(nil), d.order...)
	plugins := d.plugins
	d.mu.RUnlock()
	for _, name := range order {
		if d.disabled(name) {
			continue
		}
		if plugins[name].Receive(raw, train, meaning) {
			return true
		}
	}
	return false
}

// Transmit routes toTransmit to the named plugin.
func (d *DeviceRegistry) Transmit(pluginName, toTransmit string) error {
	d.mu.RLock()
	plugin, ok := d.plugins[pluginName]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no device plugin named %q", pluginName)
	}
	if !plugin.Transmit(toTransmit) {
		return fmt.Errorf("device plugin %q could not transmit", pluginName)
	}
	return nil
}

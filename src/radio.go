package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	RadioDriver interface and registry: the abstraction over
 *		whatever GPIO/CAT hardware is wired to the OOK receiver/
 *		transmitter pin pair.
 *
 * Description:	Grounded on Radio.h/Radio.cpp in original_source, with the
 *		RadioLib-specific SPI/module fields dropped - the original
 *		targets narrowband FSK/OOK transceiver chips over SPI
 *		(RadioLib), but the data model this module works with is
 *		already-demodulated OOK edges, so a driver only needs to
 *		expose an edge-timestamp source and a transmit pin toggle.
 *		As with Device, the original's static-constructor
 *		auto-registration (RADIO_PLUGIN_START/END) is replaced here
 *		by an explicit registry (see REDESIGN FLAGS and registry.go).
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EdgeFunc is called by a RadioDriver for every GPIO transition it
// observes on the receive pin, with the timestamp of the edge and the
// level immediately after it.
type EdgeFunc func(at time.Time, level bool)

// RadioDriver is the hardware abstraction EdgeCapture and the transmit
// path are built on.
type RadioDriver interface {
	// Init prepares the driver (pin setup, SPI/CAT handshake, etc).
	Init(settings SettingsStore) error
	// RX puts the hardware in receive mode and starts delivering edges
	// to onEdge until Standby or TX is called.
	RX(ctx context.Context, onEdge EdgeFunc) error
	// TX puts the hardware in transmit mode; the caller is responsible
	// for toggling the transmit level itself afterwards.
	TX(ctx context.Context) error
	// SetLevel drives the transmit pin high or low. Only valid after TX.
	SetLevel(high bool) error
	// Standby idles the hardware, stopping RX delivery if active.
	Standby() error
	// Name identifies the driver, as named by the 'radio' setting.
	Name() string
	// PinRX reports the GPIO/control line offset used for reception, for
	// diagnostics and the 'set' listing; -1 if not yet configured.
	PinRX() int
	// PinTX reports the GPIO/control line offset used for transmission,
	// for diagnostics and the 'set' listing; -1 if not yet configured.
	PinTX() int
}

// RadioRegistry holds the named RadioDriver implementations available to
// select from, and tracks which one is current.
type RadioRegistry struct {
	mu      sync.RWMutex
	drivers map[string]RadioDriver
	order   []string
	current string
}

// NewRadioRegistry returns an empty registry ready for Add calls.
func NewRadioRegistry() *RadioRegistry {
	return &RadioRegistry{drivers: make(map[string]RadioDriver)}
}

// Add registers driver under name.
func (r *RadioRegistry) Add(name string, driver RadioDriver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.drivers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.drivers[name] = driver
}

// List renders every registered driver name, comma-separated.
func (r *RadioRegistry) List() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := ""
	for n, name := range r.order {
		if n > 0 {
			res += ", "
		}
		res += name
	}
	return res
}

// Select makes name the current driver for subsequent Current calls.
func (r *RadioRegistry) Select(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[name]; !ok {
		return fmt.Errorf("no radio driver named %q", name)
	}
	r.current = name
	return nil
}

// Current returns the selected driver, or an error if none was selected.
func (r *RadioRegistry) Current() (RadioDriver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == "" {
		return nil, &ResourceUnavailable{Resource: "radio", Detail: "no radio selected"}
	}
	return r.drivers[r.current], nil
}

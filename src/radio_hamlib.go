package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	An alternate RadioDriver for OOK reception/transmission via
 *		a CAT-controlled transceiver's PTT plus GPIO lines instead of
 *		bare GPIO alone - useful when the demodulated OOK stream is
 *		recovered from a general-purpose radio's discriminator
 *		output rather than a purpose-built ASK/OOK receiver module.
 *
 * Description:	Grounded on Radio.h's driver-selection shape in
 *		original_source (a registry of interchangeable radio
 *		backends, selected by name), built here on
 *		github.com/xylo04/goHamlib, a cgo binding to the Hamlib
 *		library used to control amateur radio transceivers over
 *		CAT. RX here only switches PTT off over CAT; OOKwiz's own
 *		edge capture does the demodulated-signal timestamping
 *		through a GPIO line attached to the radio's discriminator
 *		tap. TX switches PTT on over CAT and then toggles the
 *		pin_tx GPIO line for the transmit levels.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"sync"

	"github.com/xylo04/goHamlib"
)

// HamlibDriver drives a CAT-controlled transceiver's PTT for transmit,
// and GPIO lines (via an embedded GPIOCDevDriver) for the demodulated
// receive edges and the transmit levels.
type HamlibDriver struct {
	mu     sync.Mutex
	rig    *goHamlib.Rig
	rxGPIO *GPIOCDevDriver

	model     int
	port      string
	frequency float64
}

// NewHamlibDriver builds a driver from settings: 'hamlib_model' (a
// Hamlib rig model number), 'hamlib_port' (serial device), 'frequency'
// (Hz), plus the same 'gpio_chip'/'pin_rx'/'pin_tx'/'rx_active_high'/
// 'tx_active_high' settings GPIOCDevDriver uses (Init fails unless both
// pin_rx and pin_tx are set).
func NewHamlibDriver() *HamlibDriver {
	return &HamlibDriver{}
}

func (d *HamlibDriver) Name() string { return "hamlib" }

func (d *HamlibDriver) Init(settings SettingsStore) error {
	d.model = settings.GetInt("hamlib_model", 0)
	d.port = settings.GetString("hamlib_port", "/dev/ttyUSB0")
	d.frequency = settings.GetFloat("frequency", 0)
	if d.model == 0 {
		return &ResourceUnavailable{Resource: "radio", Detail: "hamlib_model must be set"}
	}

	rig := &goHamlib.Rig{}
	if err := rig.Init(d.model); err != nil {
		return &ResourceUnavailable{Resource: "radio", Detail: fmt.Sprintf("hamlib init model %d: %v", d.model, err)}
	}
	rig.SetConf("rig_pathname", d.port)
	if err := rig.Open(); err != nil {
		return &ResourceUnavailable{Resource: "radio", Detail: fmt.Sprintf("hamlib open %s: %v", d.port, err)}
	}
	if d.frequency > 0 {
		if err := rig.SetFreq(goHamlib.VFOCurr, d.frequency); err != nil {
			return &ResourceUnavailable{Resource: "radio", Detail: fmt.Sprintf("hamlib set frequency: %v", err)}
		}
	}
	d.rig = rig

	d.rxGPIO = NewGPIOCDevDriver()
	return d.rxGPIO.Init(settings)
}

func (d *HamlibDriver) RX(ctx context.Context, onEdge EdgeFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rig == nil {
		return &ResourceUnavailable{Resource: "radio", Detail: "not initialized"}
	}
	if err := d.rig.SetPTT(goHamlib.VFOCurr, goHamlib.PTTOff); err != nil {
		return &ResourceUnavailable{Resource: "radio", Detail: fmt.Sprintf("hamlib ptt off: %v", err)}
	}
	return d.rxGPIO.RX(ctx, onEdge)
}

func (d *HamlibDriver) TX(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rig == nil {
		return &ResourceUnavailable{Resource: "radio", Detail: "not initialized"}
	}
	if err := d.rig.SetPTT(goHamlib.VFOCurr, goHamlib.PTTOn); err != nil {
		return &ResourceUnavailable{Resource: "radio", Detail: fmt.Sprintf("hamlib ptt on: %v", err)}
	}
	return d.rxGPIO.TX(ctx)
}

func (d *HamlibDriver) SetLevel(high bool) error {
	return d.rxGPIO.SetLevel(high)
}

// PinRX delegates to the embedded GPIOCDevDriver handling the
// discriminator-tap receive line.
func (d *HamlibDriver) PinRX() int {
	if d.rxGPIO == nil {
		return -1
	}
	return d.rxGPIO.PinRX()
}

// PinTX delegates to the embedded GPIOCDevDriver, whose pin_tx line
// carries the transmit levels while CAT PTT keys the rig.
func (d *HamlibDriver) PinTX() int {
	if d.rxGPIO == nil {
		return -1
	}
	return d.rxGPIO.PinTX()
}

func (d *HamlibDriver) Standby() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rig != nil {
		_ = d.rig.SetPTT(goHamlib.VFOCurr, goHamlib.PTTOff)
	}
	if d.rxGPIO != nil {
		return d.rxGPIO.Standby()
	}
	return nil
}

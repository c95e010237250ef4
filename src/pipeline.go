package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Pipeline Controller: owns EdgeCapture, the RepeatCoalescer,
 *		the selected RadioDriver and the DevicePlugin registry, and
 *		runs the loop that drains coalesced packets, runs the
 *		Classifier on them, and fans the result out to the upstream
 *		callback and the device plugin registry (first claim wins).
 *
 * Description:	Grounded on OOKwiz::setup/loop/receive/standby/simulate/
 *		transmit in original_source. The original's loop() polls
 *		isr_out once per Arduino main-loop iteration and refreshes a
 *		handful of settings once a second; here that's a goroutine
 *		polling the RepeatCoalescer on a short ticker, plus a second
 *		ticker for the once-a-second settings refresh, both stopped
 *		by cancelling the context passed to Run.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"time"
)

// Callback is invoked for every packet the pipeline finishes processing,
// in addition to the device plugin fan-out.
type Callback func(raw RawTimings, train Pulsetrain, meaning Meaning)

// Pipeline is the top-level controller tying every other component
// together.
type Pipeline struct {
	Settings SettingsStore
	Radios   *RadioRegistry
	Devices  *DeviceRegistry
	Log      Logger

	capture   *EdgeCapture
	coalescer *RepeatCoalescer
	callback  Callback

	rxCancel context.CancelFunc
}

// NewPipeline wires a Pipeline's internal components together. Settings,
// Radios and Devices must be populated before Setup is called.
func NewPipeline(settings SettingsStore, radios *RadioRegistry, devices *DeviceRegistry, log Logger) *Pipeline {
	coalescer := &RepeatCoalescer{}
	return &Pipeline{
		Settings:  settings,
		Radios:    radios,
		Devices:   devices,
		Log:       log,
		capture:   &EdgeCapture{Coalescer: coalescer},
		coalescer: coalescer,
	}
}

// OnReceive registers cb to be called, in addition to the device plugin
// fan-out, for every packet that clears the pipeline.
func (p *Pipeline) OnReceive(cb Callback) {
	p.callback = cb
}

// Setup selects the radio named by the mandatory 'radio' setting, as
// Radio::setup does, inits it, and configures EdgeCapture and the
// RepeatCoalescer. It does not start reception - call Receive for that.
func (p *Pipeline) Setup() error {
	if RescuePinActive(p.Settings, p.Log) {
		p.Log.Infof("rescue pin active at boot, skipping radio initialization")
		return nil
	}

	name := p.Settings.GetString("radio", "")
	if name == "" {
		return &ResourceUnavailable{Resource: "radio", Detail: "mandatory setting 'radio' not set"}
	}
	if err := p.Radios.Select(name); err != nil {
		return err
	}
	radio, err := p.Radios.Current()
	if err != nil {
		return err
	}
	if err := radio.Init(p.Settings); err != nil {
		return err
	}

	p.refreshSettings()
	return nil
}

func (p *Pipeline) refreshSettings() {
	s := p.Settings
	p.capture.Configure(CaptureParams{
		PulseGapLenNewPacket: time.Duration(s.GetLong("pulse_gap_len_new_packet", DefaultPulseGapLenNewPacket)) * time.Microsecond,
		FirstPulseMinLen:     time.Duration(s.GetLong("first_pulse_min_len", DefaultFirstPulseMinLen)) * time.Microsecond,
		PulseGapMinLen:       time.Duration(s.GetLong("pulse_gap_min_len", DefaultPulseGapMinLen)) * time.Microsecond,
		MinNrPulses:          s.GetInt("min_nr_pulses", DefaultMinNrPulses),
		MaxNrPulses:          s.GetInt("max_nr_pulses", DefaultMaxNrPulses),
		NoisePenalty:         s.GetInt("noise_penalty", DefaultNoisePenalty),
		NoiseThreshold:       s.GetInt("noise_threshold", DefaultNoiseThreshold),
		NoNoiseFix:           s.IsSet("no_noise_fix"),
		RxActiveHigh:         s.IsSet("rx_active_high"),
	}, s.GetInt("bin_width", DefaultBinWidth))
	p.coalescer.RepeatTimeout = time.Duration(s.GetLong("repeat_timeout", DefaultRepeatTimeoutUS)) * time.Microsecond
}

// Receive puts the current radio in RX mode and arms EdgeCapture. Run
// must still be called to drain coalesced packets.
func (p *Pipeline) Receive(ctx context.Context) error {
	radio, err := p.Radios.Current()
	if err != nil {
		return err
	}
	p.refreshSettings()
	rxCtx, cancel := context.WithCancel(ctx)
	if err := radio.RX(rxCtx, p.capture.Edge); err != nil {
		cancel()
		return err
	}
	p.rxCancel = cancel
	return nil
}

// Standby takes the radio out of RX mode, trying to let any in-progress
// reception finish first (tryToBeNice in original_source).
func (p *Pipeline) Standby() error {
	p.tryToBeNice(500 * time.Millisecond)
	if p.rxCancel != nil {
		p.rxCancel()
		p.rxCancel = nil
	}
	p.capture.Stop()
	radio, err := p.Radios.Current()
	if err != nil {
		return err
	}
	return radio.Standby()
}

// tryToBeNice waits up to timeout for EdgeCapture to return to
// CaptureWaitPreamble, so a transmit or mode switch doesn't truncate an
// in-progress reception. It does not report whether it succeeded - the
// original discards that result too, proceeding regardless.
func (p *Pipeline) tryToBeNice(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.capture.State() == CaptureWaitPreamble {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// Run drains coalesced packets and periodically refreshes settings until
// ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	drain := time.NewTicker(5 * time.Millisecond)
	defer drain.Stop()
	refresh := time.NewTicker(time.Second)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			p.refreshSettings()
		case <-drain.C:
			train, ok := p.coalescer.Collect()
			if !ok {
				continue
			}
			p.deliver(RawTimings{}, train)
		}
	}
}

func (p *Pipeline) deliver(raw RawTimings, train Pulsetrain) {
	var meaning Meaning
	meaning.FromPulsetrain(train)

	if p.Devices != nil {
		p.Devices.NewPacket(raw, train, meaning)
	}
	if p.callback != nil {
		p.callback(raw, train, meaning)
	}
}

// Simulate parses str as a RawTimings, Pulsetrain or Meaning and feeds it
// through the pipeline as though it had just been received.
func (p *Pipeline) Simulate(str string) error {
	p.tryToBeNice(500 * time.Millisecond)
	switch {
	case MaybeRawTimings(str):
		raw, err := ParseRawTimings(str)
		if err != nil {
			return err
		}
		cleaned, ok := NoisePass(raw, NoiseParams{
			MinPulses:  p.Settings.GetInt("min_nr_pulses", DefaultMinNrPulses),
			GapMinLen:  p.Settings.GetInt("pulse_gap_min_len", DefaultPulseGapMinLen),
			NoNoiseFix: p.Settings.IsSet("no_noise_fix"),
		})
		if !ok {
			return nil
		}
		var train Pulsetrain
		train.FromRawTimings(cleaned, p.Settings.GetInt("bin_width", DefaultBinWidth))
		p.deliver(cleaned, train)
	case MaybePulsetrain(str):
		train, err := ParsePulsetrain(str)
		if err != nil {
			return err
		}
		p.deliver(RawTimings{}, train)
	case MaybeMeaning(str):
		meaning, err := ParseMeaning(str)
		if err != nil {
			return err
		}
		var train Pulsetrain
		if err := train.FromMeaning(meaning); err != nil {
			return err
		}
		p.deliver(RawTimings{}, train)
	default:
		return &ParseError{Representation: "RawTimings/Pulsetrain/Meaning", Detail: "string does not look like any known representation"}
	}
	return nil
}

// Transmit parses str and transmits it over the current radio, taking
// the receiver offline first and restoring its previous state afterwards
// (OOKwiz::transmit).
func (p *Pipeline) Transmit(str string) error {
	switch {
	case MaybeRawTimings(str):
		raw, err := ParseRawTimings(str)
		if err != nil {
			return err
		}
		var train Pulsetrain
		train.FromRawTimings(raw, p.Settings.GetInt("bin_width", DefaultBinWidth))
		train.Repeats = 1
		return p.transmitTrain(train)
	case MaybePulsetrain(str):
		train, err := ParsePulsetrain(str)
		if err != nil {
			return err
		}
		return p.transmitTrain(train)
	case MaybeMeaning(str):
		meaning, err := ParseMeaning(str)
		if err != nil {
			return err
		}
		var train Pulsetrain
		if err := train.FromMeaning(meaning); err != nil {
			return err
		}
		return p.transmitTrain(train)
	default:
		return &ParseError{Representation: "RawTimings/Pulsetrain/Meaning", Detail: "string does not look like any known representation"}
	}
}

func (p *Pipeline) transmitTrain(train Pulsetrain) error {
	wasReceiving := p.rxCancel != nil
	if wasReceiving {
		if err := p.Standby(); err != nil {
			return err
		}
	}

	radio, err := p.Radios.Current()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := radio.TX(ctx); err != nil {
		return err
	}

	txActiveHigh := p.Settings.IsSet("tx_active_high")
	repeats := train.Repeats
	if repeats == 0 {
		repeats = 1
	}

	withRealtimePriority(p.Log, 1, func() {
		for r := uint16(0); r < repeats; r++ {
			bit := txActiveHigh
			_ = radio.SetLevel(bit)
			for _, transition := range train.Transitions {
				sleepMicros(int(train.Bins[transition].Average))
				bit = !bit
				_ = radio.SetLevel(bit)
			}
			_ = radio.SetLevel(!txActiveHigh)
			sleepMicros(int(train.Gap))
		}
	})

	if wasReceiving {
		return p.Receive(ctx)
	}
	return radio.Standby()
}

func sleepMicros(us int) {
	if us > 0 {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

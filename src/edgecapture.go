package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	EdgeCapture: the receive-side state machine that turns a
 *		stream of GPIO level changes into closed RawTimings, runs
 *		NoisePass and the Binner on them, and forwards the result to
 *		a RepeatCoalescer.
 *
 * Description:	Grounded on OOKwiz::ISR_transition, ISR_transitionTimeout
 *		and process_raw in original_source. The original runs this
 *		at interrupt level with a hardware timer restarted on every
 *		edge to catch "transmission went quiet" with no further
 *		edges arriving; here that's a goroutine-safe struct with a
 *		time.Timer doing the same job, fed by a RadioDriver's edge
 *		callback instead of a real ISR.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
	"time"
)

// CaptureState is EdgeCapture's receive state.
type CaptureState int

const (
	CaptureOff CaptureState = iota
	CaptureWaitPreamble
	CaptureReceivingData
	CaptureProcessing
)

// CaptureParams mirrors the settings OOKwiz::setup reads with
// SETTING_OR_ERROR before enabling reception.
type CaptureParams struct {
	PulseGapLenNewPacket time.Duration // pulse_gap_len_new_packet: silence after which the transition timer ends the packet
	FirstPulseMinLen     time.Duration
	PulseGapMinLen       time.Duration
	MinNrPulses          int
	MaxNrPulses          int
	NoisePenalty         int
	NoiseThreshold       int
	NoNoiseFix           bool
	RxActiveHigh         bool
}

// EdgeCapture is safe for concurrent use: Edge is called from the radio
// driver's callback (conceptually interrupt context), Configure and
// Stop from the Pipeline Controller.
type EdgeCapture struct {
	mu              sync.Mutex
	state           CaptureState
	params          CaptureParams
	binWidth        int
	lastTransition  time.Time
	noiseScore      int
	intervals       []uint16
	transitionTimer *time.Timer

	Coalescer *RepeatCoalescer

	// Now lets tests stub the clock; nil means time.Now.
	Now func() time.Time
}

func (e *EdgeCapture) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Configure sets the capture parameters and the Binner's bin width, and
// arms the preamble-wait state. Must be called before the radio driver
// starts delivering edges.
func (e *EdgeCapture) Configure(p CaptureParams, binWidth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p
	e.binWidth = binWidth
	e.state = CaptureWaitPreamble
}

// Stop takes the state machine offline; further Edge calls are ignored
// until Configure is called again.
func (e *EdgeCapture) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = CaptureOff
	if e.transitionTimer != nil {
		e.transitionTimer.Stop()
	}
	e.intervals = nil
}

// State reports the current receive state, for the "tries to be nice"
// transmit handoff (it waits for CaptureWaitPreamble).
func (e *EdgeCapture) State() CaptureState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Edge is the radio driver's per-transition callback: level is the GPIO
// level immediately after the edge, at is when the edge was observed.
func (e *EdgeCapture) Edge(at time.Time, level bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == CaptureOff {
		return
	}

	t := at.Sub(e.lastTransition)

	if e.state == CaptureWaitPreamble {
		if t > e.params.FirstPulseMinLen && level != e.params.RxActiveHigh {
			e.noiseScore = 0
			e.intervals = make([]uint16, 0, e.params.MaxNrPulses*2+1)
			e.state = CaptureReceivingData
		}
	}

	if e.state == CaptureReceivingData {
		if t < e.params.PulseGapMinLen {
			e.noiseScore += e.params.NoisePenalty
			if e.noiseScore >= e.params.NoiseThreshold {
				e.processRawLocked()
				e.lastTransition = at
				e.restartTransitionTimerLocked()
				return
			}
		} else if e.noiseScore > 0 {
			e.noiseScore--
		}
		e.intervals = append(e.intervals, clampUS(t))
		if len(e.intervals) == e.params.MaxNrPulses*2+1 {
			e.processRawLocked()
		}
	}

	e.lastTransition = at
	e.restartTransitionTimerLocked()
}

func clampUS(d time.Duration) uint16 {
	us := d.Microseconds()
	if us > 0xFFFF {
		return 0xFFFF
	}
	if us < 0 {
		return 0
	}
	return uint16(us)
}

// restartTransitionTimerLocked arms the "gone quiet" timeout: if no
// further edge arrives within PulseGapLenNewPacket, whatever is in
// progress gets processed as-is.
func (e *EdgeCapture) restartTransitionTimerLocked() {
	if e.transitionTimer != nil {
		e.transitionTimer.Stop()
	}
	timeout := e.params.PulseGapLenNewPacket
	if timeout <= 0 {
		timeout = DefaultPulseGapLenNewPacket * time.Microsecond
	}
	e.transitionTimer = time.AfterFunc(timeout, e.onTransitionTimeout)
}

func (e *EdgeCapture) onTransitionTimeout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != CaptureOff {
		e.processRawLocked()
	}
}

// processRawLocked runs NoisePass and, if it survives, the Binner, then
// hands the result to the RepeatCoalescer. Always returns the state
// machine to CaptureWaitPreamble. Caller holds e.mu.
func (e *EdgeCapture) processRawLocked() {
	raw := RawTimings{Intervals: e.intervals}
	e.intervals = nil
	e.state = CaptureWaitPreamble

	cleaned, ok := NoisePass(raw, NoiseParams{
		MinPulses:  e.params.MinNrPulses,
		GapMinLen:  int(e.params.PulseGapMinLen.Microseconds()),
		NoNoiseFix: e.params.NoNoiseFix,
	})
	if !ok {
		return
	}

	var train Pulsetrain
	train.FromRawTimings(cleaned, e.binWidth)
	train.FirstAt = e.now().UnixMicro()
	train.LastAt = train.FirstAt

	if e.Coalescer != nil {
		e.Coalescer.Submit(train)
	}
}

package ookwiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCaptureParams() CaptureParams {
	return CaptureParams{
		PulseGapLenNewPacket: time.Hour, // keep the "gone quiet" timer from firing during the test
		FirstPulseMinLen:     1000 * time.Microsecond,
		PulseGapMinLen:       30 * time.Microsecond,
		MinNrPulses:          2,
		MaxNrPulses:          20,
		NoisePenalty:         10,
		NoiseThreshold:       30,
		RxActiveHigh:         false,
	}
}

func feedEdges(e *EdgeCapture, start time.Time, level bool, intervals ...time.Duration) time.Time {
	at := start
	for _, interval := range intervals {
		at = at.Add(interval)
		e.Edge(at, level)
		level = !level
	}
	return at
}

func TestEdgeCaptureProducesPacketOnTransitionTimeout(t *testing.T) {
	coalescer := &RepeatCoalescer{RepeatTimeout: time.Hour}
	defer coalescer.Stop()
	e := &EdgeCapture{Coalescer: coalescer}
	e.Configure(testCaptureParams(), DefaultBinWidth)

	start := time.Unix(1000, 0)
	// First edge, level differs from RxActiveHigh(false): true, arms
	// CaptureReceivingData and records the time since the previous edge
	// (clamped to 0xFFFF here) as the packet's first, long pulse.
	e.Edge(start, true)
	assert.Equal(t, CaptureReceivingData, e.State())

	feedEdges(e, start, false, 575*time.Microsecond, 190*time.Microsecond, 575*time.Microsecond, 190*time.Microsecond, 575*time.Microsecond)

	e.onTransitionTimeout()
	assert.Equal(t, CaptureWaitPreamble, e.State())

	// The coalescer holds a first train in its compare slot until the
	// repeat timeout promotes it.
	coalescer.onRepeatTimeout()
	train, ok := coalescer.Collect()
	require.True(t, ok)
	assert.NotEmpty(t, train.Transitions)
}

func TestEdgeCaptureIgnoresEdgesWhileOff(t *testing.T) {
	e := &EdgeCapture{}
	assert.Equal(t, CaptureOff, e.State())
	e.Edge(time.Now(), true)
	assert.Equal(t, CaptureOff, e.State())
}

func TestEdgeCaptureStopDisarmsCapture(t *testing.T) {
	e := &EdgeCapture{}
	e.Configure(testCaptureParams(), DefaultBinWidth)
	e.Edge(time.Unix(1000, 0), true)
	assert.Equal(t, CaptureReceivingData, e.State())

	e.Stop()
	assert.Equal(t, CaptureOff, e.State())
	e.Edge(time.Unix(1001, 0), true)
	assert.Equal(t, CaptureOff, e.State())
}

func TestEdgeCaptureCutsOffAtMaxPulses(t *testing.T) {
	coalescer := &RepeatCoalescer{RepeatTimeout: time.Hour}
	defer coalescer.Stop()
	params := testCaptureParams()
	params.MinNrPulses = 1
	params.MaxNrPulses = 2 // cuts off after 2*2+1 = 5 intervals
	e := &EdgeCapture{Coalescer: coalescer}
	e.Configure(params, DefaultBinWidth)

	start := time.Unix(2000, 0)
	e.Edge(start, true)
	feedEdges(e, start, false, 575*time.Microsecond, 190*time.Microsecond, 575*time.Microsecond, 190*time.Microsecond, 575*time.Microsecond)

	// The cutoff fires inline once MaxNrPulses*2+1 intervals accumulate,
	// without needing the transition timeout.
	assert.Equal(t, CaptureWaitPreamble, e.State())
	coalescer.onRepeatTimeout()
	_, ok := coalescer.Collect()
	assert.True(t, ok)
}

// Package ookwiz implements the OOK packet receive/transmit core: the
// state machine and algorithms that turn raw radio edge-timings into a
// normalized pulse-train and a decoded PWM/PPM meaning, and the inverse
// encoder that serializes any of the three representations back to a
// transmittable edge schedule.
//
// The three representations, richest to sparsest, are RawTimings,
// Pulsetrain and Meaning. Data flows EdgeCapture -> NoisePass -> Binner ->
// RepeatCoalescer -> Classifier -> upstream sink on receive, and in
// reverse for transmit.
package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Shared tunables and limits for the OOK core.
 *
 *------------------------------------------------------------------*/

const (
	// MaxBins is the hard cap on the number of PulseBin equivalence
	// classes a Pulsetrain may hold.
	MaxBins = 10

	// MaxMeaningData is the cap, in bytes, on a MeaningElement's packed
	// data payload.
	MaxMeaningData = 50

	// DefaultBinWidth is the µs width used by the Binner when no
	// 'bin_width' setting is present.
	DefaultBinWidth = 150

	// DefaultVisualizerPixel is the µs-per-block base Visualizer uses;
	// VisualizerBase takes any other base. It is also the factory value
	// of the 'visualizer_pixel' setting, which nothing in this package
	// reads.
	DefaultVisualizerPixel = 200

	// SameAsToleranceUS is the per-bin average tolerance, in µs, that
	// Pulsetrain.SameAs (used by the RepeatCoalescer) allows between two trains it considers
	// identical.
	SameAsToleranceUS = 300

	// Factory defaults for the settings EdgeCapture and the
	// RepeatCoalescer read at setup and refresh periodically. Mirrors
	// factorySettings() in the original source's config.cpp.
	DefaultPulseGapLenNewPacket = 2000
	DefaultFirstPulseMinLen     = 2000
	DefaultPulseGapMinLen       = 30
	DefaultMinNrPulses          = 16
	DefaultMaxNrPulses          = 300
	DefaultRepeatTimeoutUS      = 150000
	DefaultNoisePenalty         = 10
	DefaultNoiseThreshold       = 30
)

// Assert panics with msg if cond is false. Used only for invariants that
// indicate a programming error in this package, never for malformed input
// coming from the radio or the wire-format codecs.
func Assert(cond bool, msg string) {
	if !cond {
		panic("ookwiz: assertion failed: " + msg)
	}
}

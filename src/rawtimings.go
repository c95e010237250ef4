package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	The raw form of a received (or about-to-be-transmitted)
 *		packet: an ordered sequence of microsecond edge intervals,
 *		first entry always a mark.
 *
 * Description:	This is what EdgeCapture produces directly from GPIO
 *		transitions, before NoisePass and the Binner get to it.
 *		Lifetime is meant to be short - it's a transient handed
 *		from the capture side to the normalizer, not something
 *		code should hold onto.
 *
 *------------------------------------------------------------------*/

import (
	"strconv"
	"strings"
)

// RawTimings is an ordered sequence of unsigned 16-bit microsecond
// intervals: pulse, gap, pulse, ..., pulse when complete (odd length).
type RawTimings struct {
	Intervals []uint16
}

// MaybeRawTimings reports whether str might be a RawTimings textual
// representation. It makes no promises beyond that: callers still need to
// try Parse and check the error.
func MaybeRawTimings(str string) bool {
	commas := 0
	for _, r := range str {
		if r < '0' || r > '9' {
			if r != ',' {
				return false
			}
			commas++
		}
	}
	return commas > 15
}

// Empty reports whether there are no stored intervals (the "empty
// sentinel" from the data model).
func (r RawTimings) Empty() bool {
	return len(r.Intervals) == 0
}

// Zap empties the instance so it (and the backing array) can be reused.
func (r *RawTimings) Zap() {
	r.Intervals = r.Intervals[:0]
}

// String renders the comma-separated textual form, e.g. "575,190,575,190".
func (r RawTimings) String() string {
	parts := make([]string, len(r.Intervals))
	for n, interval := range r.Intervals {
		parts[n] = strconv.Itoa(int(interval))
	}
	return strings.Join(parts, ",")
}

// ParseRawTimings parses the comma-separated textual form produced by
// String. Every comma-separated field must be a positive integer;
// anything else is a ParseError.
func ParseRawTimings(in string) (RawTimings, error) {
	fields := strings.Split(in, ",")
	intervals := make([]uint16, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseUint(strings.TrimSpace(field), 10, 16)
		if err != nil || value == 0 {
			return RawTimings{}, &ParseError{
				Representation: "RawTimings",
				Detail:         "non-numeric or zero interval '" + field + "'",
			}
		}
		intervals = append(intervals, uint16(value))
	}
	return RawTimings{Intervals: intervals}, nil
}

// FromPulsetrain projects each transition in train onto its bin's average,
// producing the edge schedule that would transmit that train.
func (r *RawTimings) FromPulsetrain(train Pulsetrain) {
	r.Intervals = make([]uint16, len(train.Transitions))
	for n, transition := range train.Transitions {
		r.Intervals[n] = uint16(train.Bins[transition].Average)
	}
}

// Visualizer renders the ASCII block-waveform for these intervals, using
// the default µs-per-block base.
func (r RawTimings) Visualizer() string {
	return r.VisualizerBase(DefaultVisualizerPixel)
}

// VisualizerBase renders the ASCII block-waveform using base µs per
// (half-character) block. Every interval gets at least one block so every
// pulse stays visible regardless of duration.
func (r RawTimings) VisualizerBase(base int) string {
	if base == 0 {
		return ""
	}
	var onesAndZeroes strings.Builder
	for n, interval := range r.Intervals {
		state := byte('1')
		if n%2 != 0 {
			state = '0'
		}
		blocks := (int(interval) + base/2) / base
		if blocks < 1 {
			blocks = 1
		}
		for m := 0; m < blocks; m++ {
			onesAndZeroes.WriteByte(state)
		}
	}
	onesAndZeroes.WriteByte('0')
	return renderBlocks(onesAndZeroes.String())
}

// renderBlocks turns a string of '0'/'1' half-characters, two at a time,
// into the quadrant-block glyphs used by the visualizer.
func renderBlocks(onesAndZeroes string) string {
	var out strings.Builder
	for n := 0; n+1 < len(onesAndZeroes); n += 2 {
		switch onesAndZeroes[n : n+2] {
		case "11":
			out.WriteRune('▀')
		case "00":
			out.WriteRune(' ')
		case "01":
			out.WriteRune('▝')
		case "10":
			out.WriteRune('▘')
		}
	}
	return out.String()
}

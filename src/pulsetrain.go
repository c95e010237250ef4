package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	The normalized form of a packet: interval durations
 *		clustered into bins, referenced by a sequence of bin
 *		indices (the "transitions").
 *
 * Description:	Produced from RawTimings by the Binner (FromRawTimings),
 *		compared for repeat-detection by the RepeatCoalescer
 *		(SameAs), and consumed by the Classifier/Decoder to produce
 *		a Meaning. The reverse path, Meaning -> Pulsetrain, is the
 *		first half of the Encoder (FromMeaning).
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PulseBin is an equivalence class of nearby interval durations.
//
// Average temporarily holds the running sum of the intervals assigned to
// the bin while the Binner is still walking the original interval order;
// it is divided down to a true average once every interval has been
// classified. This mirrors the source's reuse of the field and is noted
// here rather than hidden behind a second field, since every binning
// caller needs to know which phase they're in.
type PulseBin struct {
	Min     uint16
	Max     uint16
	Average int64
	Count   uint16
}

// Pulsetrain is the normalized, binned form of a received or synthesized
// packet.
type Pulsetrain struct {
	Bins        []PulseBin
	Transitions []uint8
	Duration    uint32
	FirstAt     int64
	LastAt      int64
	Repeats     uint16
	Gap         uint16
}

// MaybePulsetrain reports whether str might be a Pulsetrain textual
// representation: at least 10 characters, all of the first 10 digits.
func MaybePulsetrain(str string) bool {
	if len(str) < 10 {
		return false
	}
	for n := 0; n < 10; n++ {
		if str[n] < '0' || str[n] > '9' {
			return false
		}
	}
	return true
}

// Empty reports whether the train holds no transitions.
func (p Pulsetrain) Empty() bool {
	return len(p.Transitions) == 0
}

// Zap empties the train so it can be reused.
func (p *Pulsetrain) Zap() {
	p.Transitions = nil
	p.Bins = nil
	p.Gap = 0
	p.Repeats = 0
	p.LastAt = 0
}

// SameAs reports whether p and other are "the same" packet for repeat-
// coalescing purposes: identical transition sequence, identical bin
// count, and per-bin averages within SameAsToleranceUS of each other.
func (p Pulsetrain) SameAs(other Pulsetrain) bool {
	if len(p.Transitions) != len(other.Transitions) {
		return false
	}
	if len(p.Bins) != len(other.Bins) {
		return false
	}
	for n := range p.Transitions {
		if p.Transitions[n] != other.Transitions[n] {
			return false
		}
	}
	for m := range p.Bins {
		diff := p.Bins[m].Average - other.Bins[m].Average
		if diff < 0 {
			diff = -diff
		}
		if diff > SameAsToleranceUS {
			return false
		}
	}
	return true
}

// FromRawTimings runs the Binner: it clusters raw's intervals into up to
// MaxBins equivalence classes and records, for every original interval in
// order, which bin it fell in.
func (p *Pulsetrain) FromRawTimings(raw RawTimings, binWidth int) {
	if binWidth <= 0 {
		binWidth = DefaultBinWidth
	}
	sorted := append([]uint16(nil), raw.Intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	p.Bins = p.Bins[:0]
	for _, interval := range sorted {
		if len(p.Bins) == 0 || int(interval) > int(p.Bins[len(p.Bins)-1].Min)+binWidth {
			if len(p.Bins) == MaxBins {
				break
			}
			p.Bins = append(p.Bins, PulseBin{Min: interval})
		}
		p.Bins[len(p.Bins)-1].Max = interval
	}

	p.Duration = 0
	p.Transitions = make([]uint8, 0, len(raw.Intervals))
	for _, interval := range raw.Intervals {
		p.Duration += uint32(interval)
		for m := range p.Bins {
			if interval >= p.Bins[m].Min && interval <= p.Bins[m].Max {
				p.Transitions = append(p.Transitions, uint8(m))
				p.Bins[m].Average += int64(interval)
				p.Bins[m].Count++
				break
			}
		}
	}
	for m := range p.Bins {
		if p.Bins[m].Count > 0 {
			p.Bins[m].Average /= int64(p.Bins[m].Count)
		}
	}
	p.Repeats = 1
}

// Summary renders a one-line human summary, e.g.
// "25 pulses over 24287 µs, repeated 6 times with gaps of 132 µs".
func (p Pulsetrain) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d pulses over %d µs", (len(p.Transitions)+1)/2, p.Duration)
	if p.Repeats > 1 {
		fmt.Fprintf(&b, ", repeated %d times with gaps of %d µs", p.Repeats, p.Gap)
	}
	return b.String()
}

// String renders the textual form, e.g.
// "2010101100110101001101010010110011001100101100101,190,575,5906*6@132".
func (p Pulsetrain) String() string {
	if len(p.Transitions) == 0 {
		return "<empty Pulsetrain>"
	}
	var b strings.Builder
	for _, transition := range p.Transitions {
		fmt.Fprintf(&b, "%d", transition)
	}
	for _, bin := range p.Bins {
		fmt.Fprintf(&b, ",%d", bin.Average)
	}
	if p.Repeats > 1 {
		fmt.Fprintf(&b, "*%d@%d", p.Repeats, p.Gap)
	}
	return b.String()
}

// ParsePulsetrain parses the textual form produced by String.
func ParsePulsetrain(in string) (Pulsetrain, error) {
	firstComma := strings.IndexByte(in, ',')
	if firstComma == -1 {
		return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "no commas present"}
	}
	var p Pulsetrain
	numBins := 0
	p.Transitions = make([]uint8, 0, firstComma)
	for n := 0; n < firstComma; n++ {
		c := in[n]
		if c < '0' || c > '9' {
			return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "non-digits in transitions run"}
		}
		digit := int(c - '0')
		p.Transitions = append(p.Transitions, uint8(digit))
		if digit > numBins {
			numBins = digit
		}
	}
	numBins++

	rest := in[firstComma+1:]
	binSection := rest
	star := strings.IndexByte(rest, '*')
	if star == -1 {
		p.Repeats = 1
	} else {
		at := strings.IndexByte(rest, '@')
		if at == -1 || at < star {
			return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "'*' without matching '@'"}
		}
		repeats, err1 := strconv.ParseUint(rest[star+1:at], 10, 16)
		gap, err2 := strconv.ParseUint(rest[at+1:], 10, 16)
		if err1 != nil || err2 != nil || repeats == 0 || gap == 0 {
			return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "invalid values for repeats or gap"}
		}
		p.Repeats = uint16(repeats)
		p.Gap = uint16(gap)
		binSection = rest[:star]
	}

	binStrs := strings.Split(binSection, ",")
	if len(binStrs) < numBins {
		return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "fewer bin averages than transitions reference"}
	}
	p.Bins = make([]PulseBin, numBins)
	for n := 0; n < numBins; n++ {
		average, err := strconv.ParseInt(strings.TrimSpace(binStrs[n]), 10, 64)
		if err != nil || average == 0 {
			return Pulsetrain{}, &ParseError{Representation: "Pulsetrain", Detail: "invalid bin value"}
		}
		p.Bins[n] = PulseBin{Min: uint16(average), Max: uint16(average), Average: average}
	}
	for _, transition := range p.Transitions {
		p.Bins[transition].Count++
		p.Duration += uint32(p.Bins[transition].Average)
	}
	return p, nil
}

// BinList renders a multi-line table of bin statistics: min, average,
// max and occurrence count per bin.
func (p Pulsetrain) BinList() string {
	var b strings.Builder
	fmt.Fprintf(&b, " bin     min     avg     max  count")
	for m, bin := range p.Bins {
		fmt.Fprintf(&b, "\n%4d %7d %7d %7d %6d", m, bin.Min, bin.Average, bin.Max, bin.Count)
	}
	return b.String()
}

// Visualizer renders the ASCII block-waveform for this train, using the
// default µs-per-block base.
func (p Pulsetrain) Visualizer() string {
	return p.VisualizerBase(DefaultVisualizerPixel)
}

// VisualizerBase renders the ASCII block-waveform using base µs per
// (half-character) block.
func (p Pulsetrain) VisualizerBase(base int) string {
	if base == 0 {
		return ""
	}
	multiples := make([]int, len(p.Bins))
	for m, bin := range p.Bins {
		blocks := (int(bin.Average) + base/2) / base
		if blocks < 1 {
			blocks = 1
		}
		multiples[m] = blocks
	}
	var onesAndZeroes strings.Builder
	for n, transition := range p.Transitions {
		state := byte('1')
		if n%2 != 0 {
			state = '0'
		}
		for m := 0; m < multiples[transition]; m++ {
			onesAndZeroes.WriteByte(state)
		}
	}
	onesAndZeroes.WriteByte('0')
	return renderBlocks(onesAndZeroes.String())
}

// addToBins adds a new bin for time if one doesn't already exist with
// that exact average, capped at MaxBins. Used by FromMeaning's first pass.
func (p *Pulsetrain) addToBins(time uint16) {
	for _, bin := range p.Bins {
		if bin.Average == int64(time) || len(p.Bins) == MaxBins {
			return
		}
	}
	p.Bins = append(p.Bins, PulseBin{Min: time, Max: time, Average: int64(time)})
}

// binFromTime finds the index of the bin whose average equals time, or -1.
func (p Pulsetrain) binFromTime(time uint16) int {
	for m, bin := range p.Bins {
		if bin.Average == int64(time) {
			return m
		}
	}
	return -1
}

// FromMeaning runs the first half of the Encoder: it turns a Meaning back
// into a Pulsetrain, creating one bin per distinct timing value (sorted
// by average ascending) and re-deriving the transition sequence.
func (p *Pulsetrain) FromMeaning(meaning Meaning) error {
	p.Zap()
	for _, el := range meaning.Elements {
		switch el.Type {
		case ElementPulse, ElementGap:
			p.addToBins(el.Time1)
		case ElementPWM:
			p.addToBins(el.Time1)
			p.addToBins(el.Time2)
		case ElementPPM:
			p.addToBins(el.Time1)
			p.addToBins(el.Time2)
			p.addToBins(el.Time3)
		}
	}
	sort.Slice(p.Bins, func(i, j int) bool { return p.Bins[i].Average < p.Bins[j].Average })

	for n, el := range meaning.Elements {
		switch el.Type {
		case ElementPulse:
			if len(p.Transitions)%2 != 0 {
				filler, err := p.fillerFor(meaning.Elements, n)
				if err != nil {
					p.Zap()
					return err
				}
				p.Transitions = append(p.Transitions, uint8(filler))
			}
			p.Transitions = append(p.Transitions, uint8(p.binFromTime(el.Time1)))
		case ElementGap:
			if len(p.Transitions)%2 == 0 {
				p.Zap()
				return &EncoderParityError{Element: n, Detail: "cannot have a gap where a pulse is expected"}
			}
			p.Transitions = append(p.Transitions, uint8(p.binFromTime(el.Time1)))
		case ElementPWM:
			p.appendPWM(el)
		case ElementPPM:
			p.appendPPM(el)
		}
	}

	for _, transition := range p.Transitions {
		p.Bins[transition].Count++
		p.Duration += uint32(p.Bins[transition].Average)
	}
	p.Repeats = meaning.Repeats
	p.Gap = meaning.Gap
	return nil
}

// fillerFor finds the filler timing (preceding PPM's time3, or preceding
// PWM's time1) to use ahead of a PULSE element that needs one inserted
// because the transition count is odd (a gap is expected next).
func (p Pulsetrain) fillerFor(elements []MeaningElement, n int) (int, error) {
	if n > 0 {
		switch elements[n-1].Type {
		case ElementPPM:
			return p.binFromTime(elements[n-1].Time3), nil
		case ElementPWM:
			return p.binFromTime(elements[n-1].Time1), nil
		}
	}
	return 0, &EncoderParityError{Element: n, Detail: "cannot have a pulse where a gap is expected"}
}

func (p *Pulsetrain) appendPWM(el MeaningElement) {
	tmp := alignedDataCopy(el)
	mark := uint8(p.binFromTime(el.Time2))
	space := uint8(p.binFromTime(el.Time1))
	for m := 0; m < int(el.DataLen); m++ {
		if shiftOutBit(tmp, int(el.DataLen)) {
			p.Transitions = append(p.Transitions, mark, space)
		} else {
			p.Transitions = append(p.Transitions, space, mark)
		}
	}
}

func (p *Pulsetrain) appendPPM(el MeaningElement) {
	filler := uint8(p.binFromTime(el.Time3))
	if len(p.Transitions)%2 != 0 {
		p.Transitions = append(p.Transitions, filler)
	}
	tmp := alignedDataCopy(el)
	mark := uint8(p.binFromTime(el.Time2))
	space := uint8(p.binFromTime(el.Time1))
	for m := 0; m < int(el.DataLen); m++ {
		if shiftOutBit(tmp, int(el.DataLen)) {
			p.Transitions = append(p.Transitions, mark, filler)
		} else {
			p.Transitions = append(p.Transitions, space, filler)
		}
	}
	p.Transitions = p.Transitions[:len(p.Transitions)-1] // retract trailing filler
}

// alignedDataCopy copies el.Data and left-shifts it so the first received
// bit sits in the MSB of the first byte, ready for shiftOutBit to walk it
// back out MSB-first.
func alignedDataCopy(el MeaningElement) []byte {
	lenBytes := (int(el.DataLen) + 7) / 8
	tmp := make([]byte, lenBytes)
	copy(tmp, el.Data)
	shiftBy := (8 - (int(el.DataLen) % 8)) % 8
	for j := 0; j < shiftBy; j++ {
		shiftOutBit(tmp, int(el.DataLen))
	}
	return tmp
}

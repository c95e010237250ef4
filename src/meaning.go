package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	The Classifier and Decoder: turns a Pulsetrain's bin-index
 *		transitions into a symbolic Meaning by detecting whether
 *		the signal looks like PWM or PPM and decoding accordingly.
 *		Also the Meaning textual codec, and the first half of the
 *		Encoder's data entry points (AddPWM/AddPPM/AddPulse/AddGap)
 *		used both by Meaning.fromString and by hand-built test
 *		Meanings.
 *
 * Description:	See https://gabor.heja.hu/blog/2020/03/16/receiving-and-
 *		decoding-radio-signals-from-wireless-devices/ for background
 *		on the PWM/PPM prevalence heuristic this is built on.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ElementType is the kind of a MeaningElement.
type ElementType int

const (
	ElementPulse ElementType = iota
	ElementGap
	ElementPWM
	ElementPPM
)

// MeaningElement is one decoded (or hand-built) piece of a Meaning.
//
// PULSE/GAP use Time1 only. PWM uses Time1 as the space-first-for-bit-0
// timing and Time2 as the mark-first-for-bit-1 timing. PPM adds Time3,
// the filler interval between data bits.
type MeaningElement struct {
	Type    ElementType
	Time1   uint16
	Time2   uint16
	Time3   uint16
	Data    []byte
	DataLen uint16 // in bits
}

// Meaning is the decoded, symbolic representation of a packet.
type Meaning struct {
	Elements            []MeaningElement
	SuspectedIncomplete bool
	Repeats             uint16
	Gap                 uint16
}

// MaybeMeaning reports whether str might be a Meaning textual
// representation: it contains an opening paren.
func MaybeMeaning(str string) bool {
	return strings.Contains(str, "(")
}

// Empty reports whether the Meaning holds no elements.
func (m Meaning) Empty() bool {
	return len(m.Elements) == 0
}

// Zap empties the Meaning so it can be reused.
func (m *Meaning) Zap() {
	m.Elements = nil
	m.SuspectedIncomplete = false
}

type prevalence struct {
	bin   int
	count uint16
}

// prevalenceOrder returns bin indices ordered by occurrence count,
// descending, stable on ties.
func prevalenceOrder(bins []PulseBin) []prevalence {
	order := make([]prevalence, len(bins))
	for n, bin := range bins {
		order[n] = prevalence{bin: n, count: bin.Count}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].count > order[j].count })
	return order
}

// FromPulsetrain runs the Classifier and Decoder: it detects PWM or PPM
// modulation from bin prevalence and decodes train's transitions into
// Meaning elements. It reports false (with m left empty) when no
// modulation could be detected, or when decoding produced no PWM or PPM
// element at all - in both cases this is ClassifierUndecidable, not an
// error: the Pulsetrain is still deliverable upstream on its own.
func (m *Meaning) FromPulsetrain(train Pulsetrain) bool {
	m.Zap()
	m.Repeats = train.Repeats
	m.Gap = train.Gap

	order := prevalenceOrder(train.Bins)

	likelyPWM := len(train.Bins) >= 2 && absDiff(order[0].count, order[1].count) <= 2
	likelyPPM := false
	if len(train.Bins) >= 3 {
		diff := int(order[0].count) - int(order[1].count) - int(order[2].count)
		likelyPPM = diff >= -2 && diff <= 4
	}
	if !likelyPWM && !likelyPPM {
		return false
	}

	for n := 0; n < len(train.Transitions); n++ {
		var r int
		if likelyPWM {
			r = m.parsePWM(train, n, len(train.Transitions)-1, order[0].bin, order[1].bin)
		} else {
			r = m.parsePPM(train, n, len(train.Transitions)-1, order[1].bin, order[2].bin, order[0].bin)
		}
		if r == -1 {
			m.Zap()
			return false
		}
		if r > 0 {
			n += r - 1
			continue
		}
		if n%2 == 0 {
			m.AddPulse(uint16(train.Bins[train.Transitions[n]].Average))
		} else {
			m.AddGap(uint16(train.Bins[train.Transitions[n]].Average))
		}
	}
	decoded := false
	for _, el := range m.Elements {
		if el.Type == ElementPWM || el.Type == ElementPPM {
			decoded = true
			break
		}
	}
	if !decoded {
		m.Zap()
		return false
	}
	if train.Repeats > 1 {
		m.SuspectedIncomplete = false
	}
	return true
}

func absDiff(a, b uint16) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// parsePWM walks train's transitions in pairs starting at from, decoding
// (space, mark) as bit 0 and (mark, space) as bit 1. It stops at the
// first pair that isn't one of those two shapes, emits a PWM element if
// at least 8 bits were decoded, and returns the number of transitions
// consumed (0 if fewer than 8 bits decoded).
func (m *Meaning) parsePWM(train Pulsetrain, from, to, space, mark int) int {
	var tmp [MaxMeaningData]byte
	transitionsParsed := 0
	numBits := 0
	for n := from; n+1 <= to; n += 2 {
		current := int(train.Transitions[n])
		next := int(train.Transitions[n+1])
		if current == space && next == mark {
			numBits++
			shiftInBit(tmp[:], numBits, false)
			transitionsParsed += 2
		} else if current == mark && next == space {
			numBits++
			shiftInBit(tmp[:], numBits, true)
			transitionsParsed += 2
		} else {
			break
		}
	}
	if numBits%4 != 0 {
		m.SuspectedIncomplete = true
	}
	if numBits < 8 {
		return 0
	}
	m.Elements = append(m.Elements, MeaningElement{
		Type:    ElementPWM,
		Time1:   uint16(train.Bins[space].Average),
		Time2:   uint16(train.Bins[mark].Average),
		DataLen: uint16(numBits),
		Data:    reversedBytes(tmp[:], numBits),
	})
	return transitionsParsed
}

// parsePPM single-steps through train's transitions starting at from,
// decoding a mark or space following a filler as a data bit, and stops at
// two fillers in a row or anything else unexpected.
func (m *Meaning) parsePPM(train Pulsetrain, from, to, space, mark, filler int) int {
	var tmp [MaxMeaningData]byte
	transitionsParsed := 0
	numBits := 0
	previous := -1
	for n := from; n <= to; n++ {
		current := int(train.Transitions[n])
		switch {
		case current == space && previous == filler:
			numBits++
			shiftInBit(tmp[:], numBits, false)
			transitionsParsed++
		case current == mark && previous == filler:
			numBits++
			shiftInBit(tmp[:], numBits, true)
			transitionsParsed++
		case current == filler:
			if previous == filler {
				n = to + 1 // break out, matching the C 'break' inside the for
				goto done
			}
			transitionsParsed++
		default:
			goto done
		}
		previous = current
	}
done:
	if numBits%4 != 0 {
		m.SuspectedIncomplete = true
	}
	if numBits < 8 {
		return 0
	}
	m.Elements = append(m.Elements, MeaningElement{
		Type:    ElementPPM,
		Time1:   uint16(train.Bins[space].Average),
		Time2:   uint16(train.Bins[mark].Average),
		Time3:   uint16(train.Bins[filler].Average),
		DataLen: uint16(numBits),
		Data:    reversedBytes(tmp[:], numBits),
	})
	return transitionsParsed
}

// reversedBytes copies the first (numBits+7)/8 bytes of tmp, inserting
// each at the front of the result instead of the back - this is the
// decoder's "insert at front, reversing order" step (DESIGN.md), which
// compensates for shiftInBit filling low-to-high as bits arrive.
func reversedBytes(tmp []byte, numBits int) []byte {
	lenBytes := (numBits + 7) / 8
	out := make([]byte, lenBytes)
	for n := 0; n < lenBytes; n++ {
		out[lenBytes-1-n] = tmp[n]
	}
	return out
}

// AddPulse appends a PULSE element for the given timing.
func (m *Meaning) AddPulse(pulseTime uint16) {
	m.Elements = append(m.Elements, MeaningElement{Type: ElementPulse, Time1: pulseTime})
}

// AddGap appends a GAP element for the given timing.
func (m *Meaning) AddGap(gapTime uint16) {
	m.Elements = append(m.Elements, MeaningElement{Type: ElementGap, Time1: gapTime})
}

// AddPWM appends a PWM element with the given space/mark timings and data.
func (m *Meaning) AddPWM(space, mark uint16, bits int, data []byte) {
	lenBytes := (bits + 7) / 8
	m.Elements = append(m.Elements, MeaningElement{
		Type:    ElementPWM,
		Time1:   space,
		Time2:   mark,
		DataLen: uint16(bits),
		Data:    append([]byte(nil), data[:lenBytes]...),
	})
}

// AddPPM appends a PPM element with the given space/mark/filler timings
// and data.
func (m *Meaning) AddPPM(space, mark, filler uint16, bits int, data []byte) {
	lenBytes := (bits + 7) / 8
	m.Elements = append(m.Elements, MeaningElement{
		Type:    ElementPPM,
		Time1:   space,
		Time2:   mark,
		Time3:   filler,
		DataLen: uint16(bits),
		Data:    append([]byte(nil), data[:lenBytes]...),
	})
}

// String renders the textual form, e.g.
// "pulse(5906) + pwm(timing 190/575, 24 bits 0x...)".
func (m Meaning) String() string {
	parts := make([]string, 0, len(m.Elements))
	for _, el := range m.Elements {
		switch el.Type {
		case ElementPulse:
			parts = append(parts, fmt.Sprintf("pulse(%d)", el.Time1))
		case ElementGap:
			parts = append(parts, fmt.Sprintf("gap(%d)", el.Time1))
		case ElementPWM:
			parts = append(parts, fmt.Sprintf("pwm(timing %d/%d, %d bits 0x%s", el.Time1, el.Time2, el.DataLen, hexData(el))+")")
		case ElementPPM:
			parts = append(parts, fmt.Sprintf("ppm(timing %d/%d/%d, %d bits 0x%s", el.Time1, el.Time2, el.Time3, el.DataLen, hexData(el))+")")
		}
	}
	res := strings.Join(parts, " + ")
	if m.Repeats > 1 {
		res += fmt.Sprintf("  Repeated %d times with %d µs gap.", m.Repeats, m.Gap)
	}
	if m.SuspectedIncomplete {
		res += " (SUSPECTED INCOMPLETE)"
	}
	return res
}

func hexData(el MeaningElement) string {
	lenBytes := (int(el.DataLen) + 7) / 8
	var b strings.Builder
	for n := 0; n < lenBytes && n < len(el.Data); n++ {
		fmt.Fprintf(&b, "%02X", el.Data[n])
	}
	return b.String()
}

// ParseMeaning parses the textual form produced by String.
func ParseMeaning(in string) (Meaning, error) {
	in = strings.ToLower(in)
	var m Meaning
	m.Repeats = 1

	if rptd := strings.Index(in, "repeated"); rptd != -1 {
		tail := in[rptd:]
		repeats := nthNumberFrom(tail, 0)
		gap := nthNumberFrom(tail, 1)
		if repeats <= 0 || gap <= 0 {
			return Meaning{}, &ParseError{Representation: "Meaning", Detail: "invalid values for repeats or gap"}
		}
		m.Repeats = uint16(repeats)
		m.Gap = uint16(gap)
		in = in[:rptd]
	}

	for _, work := range strings.Split(in, "+") {
		work = strings.TrimSpace(work)
		if work == "" {
			continue
		}
		openBracket := strings.IndexByte(work, '(')
		closeBracket := strings.IndexByte(work, ')')
		if openBracket == -1 || closeBracket == -1 {
			return Meaning{}, &ParseError{Representation: "Meaning", Detail: "incorrect element '" + work + "'"}
		}
		switch {
		case strings.HasPrefix(work, "pulse"):
			num := nthNumberFrom(work, 0)
			if num == -1 {
				return Meaning{}, &ParseError{Representation: "Meaning", Detail: "no length found in '" + work + "'"}
			}
			m.AddPulse(uint16(num))
		case strings.HasPrefix(work, "gap"):
			num := nthNumberFrom(work, 0)
			if num == -1 {
				return Meaning{}, &ParseError{Representation: "Meaning", Detail: "no length found in '" + work + "'"}
			}
			m.AddGap(uint16(num))
		case strings.HasPrefix(work, "ppm"):
			if err := parsePPMElement(&m, work); err != nil {
				return Meaning{}, err
			}
		case strings.HasPrefix(work, "pwm"):
			if err := parsePWMElement(&m, work); err != nil {
				return Meaning{}, err
			}
		default:
			return Meaning{}, &ParseError{Representation: "Meaning", Detail: "unrecognised element '" + work + "'"}
		}
	}
	return m, nil
}

func parsePPMElement(m *Meaning, work string) error {
	time1 := nthNumberFrom(work, 0)
	time2 := nthNumberFrom(work, 1)
	time3 := nthNumberFrom(work, 2)
	bits := nthNumberFrom(work, 3)
	checkZero := nthNumberFrom(work, 4)
	if time1 < 1 || time2 < 1 || time3 < 1 || checkZero != 0 {
		return &ParseError{Representation: "Meaning", Detail: "'" + work + "' malformed"}
	}
	data, err := parseHexData(work, bits)
	if err != nil {
		return err
	}
	m.AddPPM(uint16(time1), uint16(time2), uint16(time3), bits, data)
	return nil
}

func parsePWMElement(m *Meaning, work string) error {
	time1 := nthNumberFrom(work, 0)
	time2 := nthNumberFrom(work, 1)
	bits := nthNumberFrom(work, 2)
	checkZero := nthNumberFrom(work, 3)
	if time1 < 1 || time2 < 1 || checkZero != 0 {
		return &ParseError{Representation: "Meaning", Detail: "'" + work + "' malformed"}
	}
	data, err := parseHexData(work, bits)
	if err != nil {
		return err
	}
	m.AddPWM(uint16(time1), uint16(time2), bits, data)
	return nil
}

func parseHexData(work string, bits int) ([]byte, error) {
	dataStart := strings.Index(work, "0x")
	dataEnd := strings.IndexByte(work, ')')
	if dataStart == -1 || dataEnd < dataStart {
		return nil, &ParseError{Representation: "Meaning", Detail: "'" + work + "' malformed"}
	}
	hexData := work[dataStart+2 : dataEnd]
	bytesExpected := (bits + 7) / 8
	if len(hexData) != bytesExpected*2 {
		return nil, &ParseError{Representation: "Meaning", Detail: fmt.Sprintf("%d bits means %d data bytes in hex expected", bits, bytesExpected)}
	}
	data := make([]byte, bytesExpected)
	for n := 0; n < bytesExpected; n++ {
		value, err := strconv.ParseUint(hexData[n*2:n*2+2], 16, 8)
		if err != nil {
			return nil, &ParseError{Representation: "Meaning", Detail: "'" + work + "' malformed"}
		}
		data[n] = byte(value)
	}
	return data, nil
}

// nthNumberFrom finds the num'th (0-indexed) contiguous run of digits in
// in and returns it parsed as an int, or -1 if there aren't that many.
func nthNumberFrom(in string, num int) int {
	index := 0
	onNumbers := false
	count := 0
	for index < len(in) {
		isDigit := in[index] >= '0' && in[index] <= '9'
		if isDigit && !onNumbers {
			onNumbers = true
			if count == num {
				end := index
				for end < len(in) && in[end] >= '0' && in[end] <= '9' {
					end++
				}
				value, err := strconv.Atoi(in[index:end])
				if err != nil {
					return -1
				}
				return value
			}
		}
		if !isDigit && onNumbers {
			onNumbers = false
			count++
		}
		index++
	}
	return -1
}

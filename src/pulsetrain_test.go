package ookwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPulsetrainFromRawTimingsBinsWithinWidth(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 580, 195, 570, 185}}
	var train Pulsetrain
	train.FromRawTimings(raw, DefaultBinWidth)

	assert.LessOrEqual(t, len(train.Bins), MaxBins)
	assert.Len(t, train.Transitions, len(raw.Intervals))
	for _, bin := range train.Bins {
		assert.LessOrEqual(t, int(bin.Max-bin.Min), DefaultBinWidth)
	}
}

func TestPulsetrainStringParseRoundTrip(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 575, 190, 575, 190, 5906}}
	var train Pulsetrain
	train.FromRawTimings(raw, DefaultBinWidth)
	train.Repeats = 4
	train.Gap = 132

	parsed, err := ParsePulsetrain(train.String())
	require.NoError(t, err)
	assert.Equal(t, train.Transitions, parsed.Transitions)
	assert.Equal(t, train.Repeats, parsed.Repeats)
	assert.Equal(t, train.Gap, parsed.Gap)
	require.Len(t, parsed.Bins, len(train.Bins))
	for n := range train.Bins {
		assert.Equal(t, train.Bins[n].Average, parsed.Bins[n].Average)
	}
}

// Every Pulsetrain the Binner can produce must round-trip its
// transitions, repeats, gap and per-bin averages through String/Parse.
func TestPulsetrainRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		intervals := make([]uint16, n)
		for i := range intervals {
			intervals[i] = uint16(rapid.IntRange(1, 65535).Draw(t, "interval"))
		}
		raw := RawTimings{Intervals: intervals}

		var train Pulsetrain
		train.FromRawTimings(raw, DefaultBinWidth)
		if rapid.Bool().Draw(t, "repeated") {
			train.Repeats = uint16(rapid.IntRange(2, 1000).Draw(t, "repeats"))
			train.Gap = uint16(rapid.IntRange(1, 65535).Draw(t, "gap"))
		}

		parsed, err := ParsePulsetrain(train.String())
		require.NoError(t, err)
		assert.Equal(t, train.Transitions, parsed.Transitions)
		assert.Equal(t, train.Repeats, parsed.Repeats)
		assert.Equal(t, train.Gap, parsed.Gap)
		require.Len(t, parsed.Bins, len(train.Bins))
		for i := range train.Bins {
			assert.Equal(t, train.Bins[i].Average, parsed.Bins[i].Average)
		}
	})
}

func TestMaybePulsetrainNeedsTenLeadingDigits(t *testing.T) {
	assert.True(t, MaybePulsetrain("0101010101,190,575"))
	assert.False(t, MaybePulsetrain("01,190,575"))
	assert.False(t, MaybePulsetrain("010101010a,190,575"))
}

func TestPulsetrainSameAsIgnoresSmallAverageDrift(t *testing.T) {
	a := Pulsetrain{
		Transitions: []uint8{0, 1, 0, 1},
		Bins:        []PulseBin{{Average: 575}, {Average: 190}},
	}
	b := Pulsetrain{
		Transitions: []uint8{0, 1, 0, 1},
		Bins:        []PulseBin{{Average: 575 + SameAsToleranceUS - 1}, {Average: 190}},
	}
	assert.True(t, a.SameAs(b))

	c := Pulsetrain{
		Transitions: []uint8{0, 1, 0, 1},
		Bins:        []PulseBin{{Average: 575 + SameAsToleranceUS + 1}, {Average: 190}},
	}
	assert.False(t, a.SameAs(c))
}

func TestPulsetrainSameAsRequiresIdenticalTransitions(t *testing.T) {
	a := Pulsetrain{Transitions: []uint8{0, 1, 0, 1}, Bins: []PulseBin{{Average: 575}, {Average: 190}}}
	b := Pulsetrain{Transitions: []uint8{0, 1, 1, 0}, Bins: []PulseBin{{Average: 575}, {Average: 190}}}
	assert.False(t, a.SameAs(b))
}

func TestPulsetrainFromMeaningRejectsBrokenParity(t *testing.T) {
	m := Meaning{Elements: []MeaningElement{
		{Type: ElementGap, Time1: 190}, // a gap where a pulse is expected
	}}
	var train Pulsetrain
	err := train.FromMeaning(m)
	assert.Error(t, err)
	assert.True(t, train.Empty())
}

func TestPulsetrainFromMeaningThenRawTimingsKeepsTransitionCount(t *testing.T) {
	var m Meaning
	m.AddPulse(5906)
	m.AddGap(190)
	m.AddPWM(200, 600, 8, []byte{0x3C})

	var train Pulsetrain
	require.NoError(t, train.FromMeaning(m))

	var raw RawTimings
	raw.FromPulsetrain(train)
	assert.Len(t, raw.Intervals, len(train.Transitions))
}

package ookwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoisePassRejectsTooFewPulses(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 575}}
	_, ok := NoisePass(raw, NoiseParams{MinPulses: 10, GapMinLen: 30})
	assert.False(t, ok)
}

func TestNoisePassDropsTrailingEdgeOnEvenLength(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 575, 190}}
	cleaned, ok := NoisePass(raw, NoiseParams{MinPulses: 1, GapMinLen: 30})
	require.True(t, ok)
	assert.Len(t, cleaned.Intervals, 3)
	assert.Equal(t, uint16(575), cleaned.Intervals[len(cleaned.Intervals)-1])
}

func TestNoisePassMergesShortInteriorIntervals(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 5, 190, 575, 190, 575}}
	cleaned, ok := NoisePass(raw, NoiseParams{MinPulses: 1, GapMinLen: 30})
	require.True(t, ok)
	for n, interval := range cleaned.Intervals {
		if n == 0 || n == len(cleaned.Intervals)-1 {
			continue
		}
		assert.GreaterOrEqualf(t, int(interval), 30, "interior interval %d should have been merged away", n)
	}
}

func TestNoisePassNoNoiseFixSkipsMerging(t *testing.T) {
	raw := RawTimings{Intervals: []uint16{575, 190, 5, 190, 575, 190, 575}}
	cleaned, ok := NoisePass(raw, NoiseParams{MinPulses: 1, GapMinLen: 30, NoNoiseFix: true})
	require.True(t, ok)
	assert.Equal(t, raw.Intervals, cleaned.Intervals)
}

func TestMergeNoiseLeavesFirstAndLastIntervalsAlone(t *testing.T) {
	intervals := []uint16{3, 190, 575, 190, 2}
	merged := mergeNoise(intervals, 30)
	assert.Equal(t, uint16(3), merged[0])
	assert.Equal(t, uint16(2), merged[len(merged)-1])
}

package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	NoisePass: the cleanup EdgeCapture runs on a just-closed
 *		RawTimings before handing it to the Binner.
 *
 * Description:	Grounded on OOKwiz::process_raw in original_source - three
 *		checks, in order: minimum pulse count, even-length trailing-
 *		edge drop, then (unless no_noise_fix) iterative merging of
 *		any interval shorter than pulse_gap_min_len into its
 *		neighbours, a trailing short-pulse trim, and a second
 *		minimum-count check since the merge can shrink the train
 *		below the floor.
 *
 *------------------------------------------------------------------*/

// NoiseParams carries the settings NoisePass needs. MinPulses is compared
// against (pulses*2)+1 the way the original counts transitions, not pulses.
type NoiseParams struct {
	MinPulses      int
	GapMinLen      int
	NoNoiseFix     bool
}

// NoisePass cleans up raw in place-ish (it returns the cleaned copy) and
// reports whether the result still meets the minimum pulse count - false
// means the caller should discard raw as CaptureReject, not hand it on.
func NoisePass(raw RawTimings, p NoiseParams) (RawTimings, bool) {
	intervals := append([]uint16(nil), raw.Intervals...)

	if len(intervals) < p.MinPulses*2+1 {
		return RawTimings{}, false
	}
	if len(intervals)%2 == 0 {
		intervals = intervals[:len(intervals)-1]
	}

	if !p.NoNoiseFix {
		intervals = mergeNoise(intervals, p.GapMinLen)
		if len(intervals) > 0 && int(intervals[len(intervals)-1]) < p.GapMinLen {
			intervals = intervals[:len(intervals)-2]
		}
		if len(intervals) < p.MinPulses*2+1 {
			return RawTimings{}, false
		}
	}

	return RawTimings{Intervals: intervals}, true
}

// mergeNoise repeatedly finds an interior interval shorter than gapMinLen
// and folds it into its two neighbours as a single, summed interval,
// until none remain. Interior only: the first and last intervals are
// handled separately (first by first_pulse_min_len at capture time, last
// by the trailing-pulse trim above).
func mergeNoise(intervals []uint16, gapMinLen int) []uint16 {
	for {
		merged := false
		for n := 1; n < len(intervals)-1; n++ {
			if int(intervals[n]) >= gapMinLen {
				continue
			}
			sum := int(intervals[n-1]) + int(intervals[n]) + int(intervals[n+1])
			if sum > 0xFFFF {
				sum = 0xFFFF
			}
			next := make([]uint16, 0, len(intervals)-2)
			next = append(next, intervals[:n-1]...)
			next = append(next, uint16(sum))
			next = append(next, intervals[n+2:]...)
			intervals = next
			merged = true
			break
		}
		if !merged {
			return intervals
		}
	}
}

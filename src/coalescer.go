package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	RepeatCoalescer: folds immediate retransmissions of the same
 *		packet into one Pulsetrain with a repeat count, so upstream
 *		only sees one packet per real transmission instead of one
 *		per radio-level repeat.
 *
 * Description:	Grounded on OOKwiz::process_train/ISR_repeatTimeout in
 *		original_source. Three slots: in (just arrived from the
 *		Binner), compare (the candidate everything new is matched
 *		against), out (ready for the Pipeline Controller to collect).
 *		A timer fires onRepeatTimeout after RepeatTimeout of silence
 *		and promotes compare to out if out is empty.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
	"time"
)

// RepeatCoalescer is safe for concurrent use: Submit is called from the
// capture side, Collect and the repeat timer's callback from the pipeline
// side (or from a test), protected by a single mutex.
type RepeatCoalescer struct {
	mu      sync.Mutex
	compare *Pulsetrain
	out     *Pulsetrain
	timer   *time.Timer

	// RepeatTimeout is how long to wait, after the last repeat of
	// compare, before promoting it to out. Set before first Submit.
	RepeatTimeout time.Duration

	// Now lets tests stub the clock; nil means time.Now.
	Now func() time.Time
}

func (c *RepeatCoalescer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Submit hands train, just produced by the Binner, to the coalescer. It
// either starts a new candidate, folds train into the current candidate
// as a repeat, or (if the candidate slot is occupied by something
// different) starts a new candidate with train, promoting the old
// candidate to the output slot if that slot is free and dropping it if
// not (the output slot is left untouched).
func (c *RepeatCoalescer) Submit(train Pulsetrain) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.compare == nil:
		t := train
		c.compare = &t
		c.restartTimerLocked()
	case train.SameAs(*c.compare):
		c.compare.Repeats++
		gap := c.now().Sub(atTime(c.compare.LastAt)) - time.Duration(c.compare.Duration)*time.Microsecond
		gapUS := uint16(gap / time.Microsecond)
		if gapUS < c.compare.Gap || c.compare.Gap == 0 {
			c.compare.Gap = gapUS
		}
		c.compare.LastAt = c.now().UnixMicro()
		c.restartTimerLocked()
	default:
		if c.out == nil {
			c.out = c.compare
		}
		t := train
		c.compare = &t
		c.restartTimerLocked()
	}
}

func atTime(us int64) time.Time {
	return time.UnixMicro(us)
}

func (c *RepeatCoalescer) restartTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	timeout := c.RepeatTimeout
	if timeout <= 0 {
		timeout = time.Duration(DefaultRepeatTimeoutUS) * time.Microsecond
	}
	c.timer = time.AfterFunc(timeout, c.onRepeatTimeout)
}

// onRepeatTimeout is the RepeatTimeout handler: if there's a candidate and
// the output slot is free, the candidate is promoted.
func (c *RepeatCoalescer) onRepeatTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.compare != nil && c.out == nil {
		c.out = c.compare
		c.compare = nil
	}
}

// Collect returns and clears whatever is in the output slot, or reports
// false if nothing is ready yet.
func (c *RepeatCoalescer) Collect() (Pulsetrain, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return Pulsetrain{}, false
	}
	train := *c.out
	c.out = nil
	return train, true
}

// Stop releases the coalescer's timer. Safe to call even if Submit was
// never called.
func (c *RepeatCoalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}

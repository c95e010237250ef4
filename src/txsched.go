package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Best-effort scheduling priority bump for the transmit
 *		busy-wait, standing in for the original's noInterrupts()/
 *		interrupts() bracket around OOKwiz::transmit's bit-banging
 *		loop.
 *
 * Description:	A user-space Go process on Linux can't disable interrupts;
 *		the nearest equivalent available to it is asking the
 *		scheduler not to preempt it for anything but a higher-
 *		priority realtime thread, via SCHED_FIFO. This is a REDESIGN
 *		FLAG: it reduces, but does not eliminate, the jitter the
 *		original's interrupt-disable achieved, so timings at the
 *		single-digit-µs level transmit driver authors relied on
 *		should not be assumed.
 *
 *------------------------------------------------------------------*/

import (
	"golang.org/x/sys/unix"
)

// withRealtimePriority runs fn with the calling OS thread bumped to
// SCHED_FIFO at priority prio for its duration, restoring the previous
// scheduling policy afterwards regardless of how fn returns. Errors from
// the scheduler calls are logged, not fatal - transmission proceeds
// either way, just with less timing protection.
func withRealtimePriority(log Logger, prio int, fn func()) {
	tid := unix.Gettid()

	original, origErr := unix.SchedGetattr(tid, 0)
	if origErr != nil {
		log.Errorf("txsched: could not read current scheduling attributes: %v", origErr)
	}

	if err := unix.SchedSetscheduler(tid, unix.SCHED_FIFO, &unix.SchedParam{Priority: int32(prio)}); err != nil {
		log.Errorf("txsched: could not set SCHED_FIFO priority %d: %v", prio, err)
		fn()
		return
	}

	defer func() {
		if origErr != nil {
			return
		}
		if err := unix.SchedSetattr(tid, original, 0); err != nil {
			log.Errorf("txsched: could not restore scheduling attributes: %v", err)
		}
	}()

	fn()
}

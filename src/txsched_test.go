package ookwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// withRealtimePriority must run fn exactly once whether or not the
// SCHED_FIFO escalation itself succeeds - unprivileged test processes
// typically can't get it, which is exactly the case this guards.
func TestWithRealtimePriorityAlwaysRunsFn(t *testing.T) {
	log := &collectingLogger{}
	ran := false
	withRealtimePriority(log, 1, func() { ran = true })
	assert.True(t, ran)
}

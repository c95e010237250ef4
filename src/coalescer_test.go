package ookwiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePulsetrain() Pulsetrain {
	return Pulsetrain{
		Transitions: []uint8{0, 1, 0, 1},
		Bins:        []PulseBin{{Average: 575}, {Average: 190}},
		Duration:    1530,
		Repeats:     1,
	}
}

func TestRepeatCoalescerFoldsIdenticalRetransmissions(t *testing.T) {
	c := &RepeatCoalescer{RepeatTimeout: time.Hour}
	defer c.Stop()

	c.Submit(samplePulsetrain())
	c.Submit(samplePulsetrain())
	c.Submit(samplePulsetrain())

	_, ok := c.Collect()
	assert.False(t, ok, "nothing should be promoted until the repeat timeout fires")
}

func TestRepeatCoalescerPromotesOnTimeout(t *testing.T) {
	c := &RepeatCoalescer{RepeatTimeout: 10 * time.Millisecond}
	defer c.Stop()

	c.Submit(samplePulsetrain())

	require.Eventually(t, func() bool {
		train, ok := c.Collect()
		if !ok {
			return false
		}
		assert.EqualValues(t, 1, train.Repeats)
		return true
	}, time.Second, time.Millisecond)
}

func TestRepeatCoalescerCountsRepeatsBeforePromotion(t *testing.T) {
	c := &RepeatCoalescer{RepeatTimeout: 15 * time.Millisecond}
	defer c.Stop()

	c.Submit(samplePulsetrain())
	c.Submit(samplePulsetrain())
	c.Submit(samplePulsetrain())

	require.Eventually(t, func() bool {
		train, ok := c.Collect()
		if !ok {
			return false
		}
		assert.EqualValues(t, 3, train.Repeats)
		return true
	}, time.Second, time.Millisecond)
}

func TestRepeatCoalescerDifferentTrainPromotesThePrevious(t *testing.T) {
	c := &RepeatCoalescer{RepeatTimeout: time.Hour}
	defer c.Stop()

	c.Submit(samplePulsetrain())

	different := samplePulsetrain()
	different.Transitions = []uint8{1, 0, 1, 0}
	c.Submit(different)

	train, ok := c.Collect()
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 1, 0, 1}, train.Transitions)
}

func TestRepeatCoalescerCollectClearsOutSlot(t *testing.T) {
	c := &RepeatCoalescer{RepeatTimeout: time.Hour}
	defer c.Stop()

	c.Submit(samplePulsetrain())
	different := samplePulsetrain()
	different.Transitions = []uint8{1, 0, 1, 0}
	c.Submit(different)

	_, ok := c.Collect()
	require.True(t, ok)

	_, ok = c.Collect()
	assert.False(t, ok)
}

package collector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/collector"
)

func TestStartConsumesFirstSample(t *testing.T) {
	c := collector.New(4)
	require.False(t, c.Active())

	id := c.Start(1.5)
	assert.Equal(t, 1, id)
	assert.True(t, c.Active())
}

func TestStepCompletesAtExactLength(t *testing.T) {
	c := collector.New(4)
	c.Start(1)

	w, done := c.Step(2)
	assert.False(t, done)
	assert.Nil(t, w)

	w, done = c.Step(3)
	assert.False(t, done)

	w, done = c.Step(4)
	require.True(t, done)
	assert.Equal(t, []float64{1, 2, 3, 4}, w)
	assert.False(t, c.Active())
}

func TestStepIgnoredWhenNotActive(t *testing.T) {
	c := collector.New(2)
	w, done := c.Step(99)
	assert.False(t, done)
	assert.Nil(t, w)
}

func TestSecondWindowIncrementsPatternID(t *testing.T) {
	c := collector.New(2)
	id1 := c.Start(1)
	c.Step(2)
	id2 := c.Start(3)
	c.Step(4)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
}

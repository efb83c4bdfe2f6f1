package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	now := time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)
	target := now.Add(26*time.Hour + 3*time.Minute + 4*time.Second)

	d := Compute(&target, "COMPLETE", now)
	assert.False(t, d.Completed)
	assert.Equal(t, 1, d.Days)
	assert.Equal(t, 2, d.Hours)
	assert.Equal(t, 3, d.Minutes)
	assert.Equal(t, 4, d.Seconds)
	assert.Equal(t, "01d 02h 03m 04s", d.String())
}

func TestCompute_RoundsPartialSecondUp(t *testing.T) {
	now := time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)
	target := now.Add(500 * time.Millisecond)

	assert.Equal(t, "00d 00h 00m 01s", Compute(&target, "LIVE", now).String())
}

func TestCompute_CompletedShowsStatus(t *testing.T) {
	now := time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "LIVE", Compute(&now, "LIVE", now).String())

	past := now.Add(-time.Hour)
	d := Compute(&past, "COMPLETE", now)
	assert.True(t, d.Completed)
	assert.Equal(t, "COMPLETE", d.String())

	assert.Equal(t, "COMPLETE", Compute(nil, "COMPLETE", now).String())
}

func TestCompute_FarFutureStaysPositive(t *testing.T) {
	now := time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)
	target := time.Unix(1<<40, 0)

	d := Compute(&target, "COMPLETE", now)
	assert.False(t, d.Completed)
	assert.Positive(t, d.Days)
	assert.GreaterOrEqual(t, d.Hours, 0)
	assert.GreaterOrEqual(t, d.Minutes, 0)
	assert.GreaterOrEqual(t, d.Seconds, 0)
	assert.NotContains(t, d.String(), "-")
}

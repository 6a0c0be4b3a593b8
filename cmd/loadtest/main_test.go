package main

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

func TestSamplePayload_CoversEveryOutcome(t *testing.T) {
	p := samplePayload(8)
	require.Len(t, p.Entries, 8)

	rb, err := decision.DefaultRulebook()
	require.NoError(t, err)
	eng := decision.NewEngine(rb)

	got := eng.Decide(
		decision.NormalizeEntries(p.Entries),
		decision.NormalizeWatchlist(p.Watchlist),
		decision.NormalizeCountries(p.Countries),
	)
	assert.Equal(t, []decision.Decision{
		decision.Accept, decision.Quarantine, decision.Secondary, decision.Reject,
		decision.Accept, decision.Quarantine, decision.Secondary, decision.Reject,
	}, got)
}

func TestPercentile(t *testing.T) {
	items := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Zero(t, percentile(nil, 50))
	assert.Equal(t, time.Duration(5), percentile(items, 50))
	assert.Equal(t, time.Duration(9), percentile(items, 90))
	assert.Equal(t, time.Duration(10), percentile(items, 100))
}

func TestSummarize(t *testing.T) {
	samples := []sample{
		{latency: 4 * time.Millisecond, status: 200, decisions: 3},
		{latency: 2 * time.Millisecond, status: 200, decisions: 2},
		{latency: 6 * time.Millisecond, status: 500},
		{latency: 8 * time.Millisecond, err: errors.New("refused")},
	}

	s := summarize(samples, 3, 2*time.Second)

	assert.Equal(t, 4, s.requests)
	assert.Equal(t, 2, s.ok)
	assert.Equal(t, 1, s.short)
	assert.Equal(t, 1, s.failed)
	assert.Equal(t, 1, s.errors)
	assert.Equal(t, 5*time.Millisecond, s.avg)
	assert.Equal(t, 4*time.Millisecond, s.p50)
	assert.InDelta(t, 2.0, s.achievedRPS, 0.0001)
	assert.False(t, s.pass(2, time.Second))
}

func TestSummary_Pass(t *testing.T) {
	s := summary{ok: 100, requests: 100, achievedRPS: 49.5, p90: 10 * time.Millisecond}
	assert.True(t, s.pass(50, 30*time.Millisecond))
	assert.False(t, s.pass(60, 30*time.Millisecond))
	assert.False(t, s.pass(50, 5*time.Millisecond))
}

func TestDrive_CallsUntilDeadline(t *testing.T) {
	var calls atomic.Int32
	out := drive(200, 50*time.Millisecond, 4, func() sample {
		calls.Add(1)
		return sample{status: 200}
	})

	assert.NotEmpty(t, out)
	assert.Equal(t, int(calls.Load()), len(out))
}

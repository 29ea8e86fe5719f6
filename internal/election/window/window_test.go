package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContainsHalfOpen(t *testing.T) {
	start := time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start}

	require.False(t, w.Contains(start.Add(-time.Second)))
	require.True(t, w.Contains(start))
	require.True(t, w.Contains(time.Date(2026, time.August, 1, 23, 59, 59, 0, time.UTC)))
	require.False(t, w.Contains(time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC)))
	require.False(t, w.Contains(start.Add(Length)))
}

func TestKeyIsCanonicalUTC(t *testing.T) {
	start := time.Date(2026, time.July, 30, 2, 0, 0, 0, time.FixedZone("EET", 2*3600))
	w := Window{Start: start}

	require.Equal(t, "2026-07-30 00:00:00", w.Key())
}

func TestPolicyCurrentUsesRule(t *testing.T) {
	start := time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC)
	p := NewPolicy(FixedStart(start))

	w := p.Current(time.Now())
	require.Equal(t, start, w.Start)
	require.Equal(t, start.Add(72*time.Hour), w.End())
}

func TestRuleFunc(t *testing.T) {
	// A recurrence that snaps to the first of the current month.
	rule := RuleFunc(func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	})
	p := NewPolicy(rule)

	now := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	w := p.Current(now)
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), w.Start)
	require.True(t, w.Contains(now))
}

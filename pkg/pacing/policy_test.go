package pacing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordSleeps swaps the policy's sleep for a recorder.
func recordSleeps(p *FixedDelayPolicy) *[]time.Duration {
	var slept []time.Duration
	p.SetSleepFunc(func(d time.Duration) {
		slept = append(slept, d)
	})
	return &slept
}

func TestBeforeCallAlwaysDelays(t *testing.T) {
	p := New(Config{CallDelay: 2 * time.Second})
	slept := recordSleeps(p)

	p.BeforeCall(CallExtract)
	p.BeforeCall(CallDownload)
	p.BeforeCall(CallUpload)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, *slept)
}

func TestOnFailureEscalatesMultiplicatively(t *testing.T) {
	p := New(Config{
		CallDelay:         time.Second,
		FailureMultiplier: 2.0,
		MaxFailureDelay:   time.Minute,
	})
	slept := recordSleeps(p)

	p.OnFailure(CallExtract)
	p.OnFailure(CallExtract)
	p.OnFailure(CallExtract)

	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *slept)
	assert.Equal(t, 3, p.ConsecutiveFailures())
}

func TestOnFailureDelayIsCapped(t *testing.T) {
	p := New(Config{
		CallDelay:         time.Second,
		FailureMultiplier: 10.0,
		MaxFailureDelay:   5 * time.Second,
	})
	slept := recordSleeps(p)

	p.OnFailure(CallDownload)
	p.OnFailure(CallDownload)

	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)
}

func TestOnSuccessResetsFailureStreak(t *testing.T) {
	p := New(Config{
		CallDelay:         time.Second,
		FailureMultiplier: 2.0,
		MaxFailureDelay:   time.Minute,
	})
	slept := recordSleeps(p)

	p.OnFailure(CallExtract)
	p.OnFailure(CallExtract)
	p.OnSuccess()
	p.OnFailure(CallExtract)

	// The streak restarts after a success: back to the first escalation step.
	assert.Equal(t, 2*time.Second, (*slept)[len(*slept)-1])
	assert.Equal(t, 1, p.ConsecutiveFailures())
}

func TestLongPauseEveryNthSuccess(t *testing.T) {
	p := New(Config{
		LongPauseEvery:    3,
		LongPauseDuration: 30 * time.Second,
	})
	slept := recordSleeps(p)

	for i := 0; i < 7; i++ {
		p.OnSuccess()
	}

	// Successes 3 and 6 trigger the pause; the counter restarts after each.
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second}, *slept)
}

func TestLongPauseDisabledWhenZero(t *testing.T) {
	p := New(Config{LongPauseEvery: 0, LongPauseDuration: 30 * time.Second})
	slept := recordSleeps(p)

	for i := 0; i < 20; i++ {
		p.OnSuccess()
	}

	assert.Empty(t, *slept)
}

func TestFailureResetsLongPauseCounter(t *testing.T) {
	p := New(Config{
		CallDelay:         0,
		FailureMultiplier: 1.0,
		LongPauseEvery:    3,
		LongPauseDuration: 30 * time.Second,
	})
	slept := recordSleeps(p)

	p.OnSuccess()
	p.OnSuccess()
	p.OnFailure(CallUpload)
	p.OnSuccess()
	p.OnSuccess()

	assert.Empty(t, *slept, "a failure restarts the run of successes")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2*time.Second, cfg.CallDelay)
	assert.Equal(t, 2.0, cfg.FailureMultiplier)
	assert.Equal(t, 10, cfg.LongPauseEvery)
}

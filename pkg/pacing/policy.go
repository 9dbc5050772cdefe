// Package pacing imposes mandatory delays between outbound calls so the
// mirror never presents a burst pattern to upstream. It is a pure
// scheduling policy: it never inspects responses, it only counts them.
package pacing

import (
	"sync"
	"time"
)

// CallKind labels the outbound call being paced.
type CallKind string

const (
	CallExtract  CallKind = "extract"
	CallDownload CallKind = "download"
	CallUpload   CallKind = "upload"
)

// Policy is consulted before every outbound network call and again on
// transient failure.
type Policy interface {
	// BeforeCall suspends for the configured inter-call delay.
	BeforeCall(kind CallKind)
	// OnFailure suspends for an escalated delay after a transient failure.
	OnFailure(kind CallKind)
	// OnSuccess records a successful call; every Nth success inserts a
	// longer pause.
	OnSuccess()
}

// Config holds the pacing delays.
type Config struct {
	// CallDelay is the mandatory delay before every outbound call.
	CallDelay time.Duration
	// FailureMultiplier escalates the delay per consecutive failure.
	FailureMultiplier float64
	// MaxFailureDelay caps the escalated delay.
	MaxFailureDelay time.Duration
	// LongPauseEvery inserts LongPauseDuration after this many
	// consecutive successes. Zero disables the long pause.
	LongPauseEvery int
	// LongPauseDuration is the length of the periodic long pause.
	LongPauseDuration time.Duration
}

// DefaultConfig returns the pacing used against Instagram.
func DefaultConfig() Config {
	return Config{
		CallDelay:         2 * time.Second,
		FailureMultiplier: 2.0,
		MaxFailureDelay:   2 * time.Minute,
		LongPauseEvery:    10,
		LongPauseDuration: 30 * time.Second,
	}
}

// FixedDelayPolicy implements Policy with a fixed inter-call delay,
// multiplicative escalation on consecutive failures, and a periodic
// long pause. Counters are per-run only and never persisted.
type FixedDelayPolicy struct {
	cfg Config

	mu                  sync.Mutex
	consecutiveFailures int
	successesSincePause int

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// New creates a FixedDelayPolicy from the given config.
func New(cfg Config) *FixedDelayPolicy {
	if cfg.FailureMultiplier < 1 {
		cfg.FailureMultiplier = 1
	}
	return &FixedDelayPolicy{
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// SetSleepFunc replaces the sleep function. Tests use this to observe
// delays without waiting them out.
func (p *FixedDelayPolicy) SetSleepFunc(sleep func(time.Duration)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sleep = sleep
}

// BeforeCall suspends for the inter-call delay.
func (p *FixedDelayPolicy) BeforeCall(kind CallKind) {
	p.mu.Lock()
	delay := p.cfg.CallDelay
	sleep := p.sleep
	p.mu.Unlock()

	if delay > 0 {
		sleep(delay)
	}
}

// OnFailure suspends for an escalated delay and bumps the failure streak.
func (p *FixedDelayPolicy) OnFailure(kind CallKind) {
	p.mu.Lock()
	p.consecutiveFailures++
	p.successesSincePause = 0
	delay := p.escalatedDelay(p.consecutiveFailures)
	sleep := p.sleep
	p.mu.Unlock()

	if delay > 0 {
		sleep(delay)
	}
}

// OnSuccess resets the failure streak and inserts the periodic long pause.
func (p *FixedDelayPolicy) OnSuccess() {
	p.mu.Lock()
	p.consecutiveFailures = 0
	p.successesSincePause++

	var pause time.Duration
	if p.cfg.LongPauseEvery > 0 && p.successesSincePause >= p.cfg.LongPauseEvery {
		p.successesSincePause = 0
		pause = p.cfg.LongPauseDuration
	}
	sleep := p.sleep
	p.mu.Unlock()

	if pause > 0 {
		sleep(pause)
	}
}

// escalatedDelay computes CallDelay * multiplier^failures, capped.
// Caller must hold p.mu.
func (p *FixedDelayPolicy) escalatedDelay(failures int) time.Duration {
	delay := float64(p.cfg.CallDelay)
	for i := 0; i < failures; i++ {
		delay *= p.cfg.FailureMultiplier
		if p.cfg.MaxFailureDelay > 0 && delay >= float64(p.cfg.MaxFailureDelay) {
			return p.cfg.MaxFailureDelay
		}
	}
	return time.Duration(delay)
}

// ConsecutiveFailures reports the current failure streak.
func (p *FixedDelayPolicy) ConsecutiveFailures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consecutiveFailures
}

package store

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ProbeConfig bounds the startup reachability probe. The probe runs once
// per session: a handful of pings with doubling waits, then the client
// settles on local mode.
type ProbeConfig struct {
	// Attempts is how many pings to try before giving up.
	Attempts int

	// InitialWait is the pause after the first failed ping; each further
	// pause doubles, capped at MaxWait. A little jitter is applied so
	// simultaneous startups don't ping in lockstep.
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultProbeConfig returns the default probe configuration.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Attempts:    3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// probe pings until a ping succeeds, the attempts run out, or the context
// ends. Returns nil on success, otherwise the last ping error.
func (c ProbeConfig) probe(ctx context.Context, ping func() error) error {
	if c.Attempts < 1 {
		c.Attempts = 1
	}
	wait := c.InitialWait
	var err error
	for attempt := 0; attempt < c.Attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(withJitter(wait))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			if wait *= 2; wait > c.MaxWait {
				wait = c.MaxWait
			}
		}

		if err = ping(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return err
}

// withJitter spreads a wait by up to ±10%.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := float64(d) * 0.1
	return d + time.Duration(spread*(rand.Float64()*2-1))
}

// Package breakers wraps sony/gobreaker with the trip policy used for the
// database-backed data source.
package breakers

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// ErrOpen is returned by Execute while the breaker is open.
var ErrOpen = cb.ErrOpenState

// Settings tunes the trip policy.
type Settings struct {
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	MinRequests         uint32        `yaml:"min_requests"`
	FailureRatio        float64       `yaml:"failure_ratio"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
}

// DefaultSettings trips after 3 consecutive failures, or a failure ratio
// above 5% once 20 requests have been seen in the interval.
func DefaultSettings() Settings {
	return Settings{
		ConsecutiveFailures: 3,
		MinRequests:         20,
		FailureRatio:        0.05,
		Interval:            60 * time.Second,
		Timeout:             60 * time.Second,
	}
}

type Breaker struct{ cb *cb.CircuitBreaker }

// New creates a named breaker. onChange, if set, observes state transitions.
func New(name string, s Settings, onChange func(name, from, to string)) *Breaker {
	st := cb.Settings{Name: name, Interval: s.Interval, Timeout: s.Timeout}
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= s.ConsecutiveFailures {
			return true
		}
		if counts.Requests < s.MinRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > s.FailureRatio
	}
	if onChange != nil {
		st.OnStateChange = func(name string, from, to cb.State) {
			onChange(name, from.String(), to.String())
		}
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

func (b *Breaker) Execute(fn func() (any, error)) (any, error) { return b.cb.Execute(fn) }

// State reports "closed", "half-open" or "open".
func (b *Breaker) State() string { return b.cb.State().String() }

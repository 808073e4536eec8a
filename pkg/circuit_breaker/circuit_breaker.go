package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

var ErrOpenCB = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(fn func() error) error
	State() Status
	Reset()
}

// circuitBreaker keeps a ring of the last window results. It opens once the failure ratio of
// the window reaches threshold, lets calls through again after cooldown and closes after
// recovery consecutive successes.
type circuitBreaker struct {
	mu sync.Mutex

	state    Status
	window   []bool
	pos      int
	cooldown time.Duration
	openedAt time.Time

	threshold float64
	recovery  int
	successes int

	now func() time.Time
}

func New(window int, cooldown time.Duration, threshold float64, recovery int) CircuitBreaker {
	return newCircuitBreaker(window, cooldown, threshold, recovery, time.Now)
}

func newCircuitBreaker(window int, cooldown time.Duration, threshold float64, recovery int, now func() time.Time) *circuitBreaker {
	if window <= 0 {
		window = 1
	}
	return &circuitBreaker{
		state:     Closed,
		window:    make([]bool, window),
		cooldown:  cooldown,
		threshold: threshold,
		recovery:  recovery,
		now:       now,
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return ErrOpenCB
	}
	err := fn()
	cb.record(err != nil)
	return err
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != Open {
		return true
	}
	if cb.now().Sub(cb.openedAt) < cb.cooldown {
		return false
	}
	cb.state = HalfOpen
	cb.successes = 0
	return true
}

func (cb *circuitBreaker) record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case HalfOpen:
		if failed {
			cb.trip()
			return
		}
		cb.successes++
		if cb.successes >= cb.recovery {
			cb.reset()
		}
	case Closed:
		cb.window[cb.pos] = failed
		cb.pos = (cb.pos + 1) % len(cb.window)

		fails := 0
		for _, f := range cb.window {
			if f {
				fails++
			}
		}
		if float64(fails)/float64(len(cb.window)) >= cb.threshold {
			cb.trip()
		}
	}
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.pos = 0
	cb.successes = 0
	cb.state = Closed
}

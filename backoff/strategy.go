package backoff

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Strategy computes the delay before the next retry attempt.
// Attempt indices start at 0 for the first retry.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
// A non-positive d returns immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// source wraps an optional caller-supplied rand.Rand behind a mutex so a
// strategy can be shared across goroutines. A nil rng falls back to the
// package-level locked source.
type source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *source) float64() float64 {
	if s == nil || s.rng == nil {
		return rand.Float64()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *source) int63n(n int64) int64 {
	if s == nil || s.rng == nil {
		return rand.Int63n(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

type fixed struct {
	delay time.Duration
}

// NewFixed returns a strategy with a constant delay for every attempt.
func NewFixed(delay time.Duration) Strategy {
	if delay < 0 {
		delay = 0
	}
	return &fixed{delay: delay}
}

func (s *fixed) Delay(int) time.Duration { return s.delay }

type incremental struct {
	initial   time.Duration
	increment time.Duration
}

// NewIncremental returns a strategy whose delay grows by increment on
// each attempt: initial + increment*attempt.
func NewIncremental(initial, increment time.Duration) Strategy {
	if initial < 0 {
		initial = 0
	}
	if increment < 0 {
		increment = 0
	}
	return &incremental{initial: initial, increment: increment}
}

func (s *incremental) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return s.initial + s.increment*time.Duration(attempt)
}

type linearJitter struct {
	initial   time.Duration
	increment time.Duration
	src       *source
}

// NewLinearJitter returns an incremental strategy scaled by a uniform
// random factor in [0.9, 1.1]. rng may be nil for a shared seeded source.
func NewLinearJitter(initial, increment time.Duration, rng *rand.Rand) Strategy {
	if initial < 0 {
		initial = 0
	}
	if increment < 0 {
		increment = 0
	}
	return &linearJitter{initial: initial, increment: increment, src: &source{rng: rng}}
}

func (s *linearJitter) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := float64(s.initial + s.increment*time.Duration(attempt))
	factor := 0.9 + s.src.float64()*0.2
	return time.Duration(base * factor)
}

type exponential struct {
	initial time.Duration
	factor  float64
}

// NewExponential returns a strategy whose delay is initial*factor^attempt.
// A factor below 1 is treated as 1.
func NewExponential(initial time.Duration, factor float64) Strategy {
	if initial < 0 {
		initial = 0
	}
	if factor < 1 {
		factor = 1
	}
	return &exponential{initial: initial, factor: factor}
}

func (s *exponential) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(s.initial) * math.Pow(s.factor, float64(attempt))
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

type fibonacci struct {
	initial time.Duration
}

// NewFibonacci returns a strategy whose delay is initial*Fib(attempt),
// with Fib(0)=0 and Fib(1)=1.
func NewFibonacci(initial time.Duration) Strategy {
	if initial < 0 {
		initial = 0
	}
	return &fibonacci{initial: initial}
}

func (s *fibonacci) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	a, b := int64(0), int64(1)
	for i := 1; i < attempt; i++ {
		next := a + b
		if next < b {
			// Fib overflowed int64; saturate.
			return time.Duration(math.MaxInt64)
		}
		a, b = b, next
	}
	d := float64(s.initial) * float64(b)
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

type random struct {
	min time.Duration
	max time.Duration
	src *source
}

// NewRandom returns a strategy with a uniform random delay in [min, max],
// independent of the attempt index. rng may be nil.
func NewRandom(min, max time.Duration, rng *rand.Rand) Strategy {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &random{min: min, max: max, src: &source{rng: rng}}
}

func (s *random) Delay(int) time.Duration {
	if s.max == s.min {
		return s.min
	}
	return s.min + time.Duration(s.src.int63n(int64(s.max-s.min)+1))
}

type jitter struct {
	initial time.Duration
	src     *source
}

// NewJitter returns a strategy with a uniform random delay in
// [0.5*initial, 1.5*initial], independent of the attempt index.
func NewJitter(initial time.Duration, rng *rand.Rand) Strategy {
	if initial < 0 {
		initial = 0
	}
	return &jitter{initial: initial, src: &source{rng: rng}}
}

func (s *jitter) Delay(int) time.Duration {
	base := float64(s.initial)
	return time.Duration(base/2 + s.src.float64()*base)
}

type roundRobin struct {
	subs []Strategy
}

// NewRoundRobin returns a composite strategy that delegates to
// subs[attempt mod len(subs)]. It panics if subs is empty.
func NewRoundRobin(subs ...Strategy) Strategy {
	if len(subs) == 0 {
		panic("backoff: NewRoundRobin requires at least one strategy")
	}
	return &roundRobin{subs: subs}
}

func (s *roundRobin) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return s.subs[attempt%len(s.subs)].Delay(attempt)
}

package guard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/guardkit/backoff"
	"github.com/kbukum/guardkit/logger"
)

// Action is the unit of work a breaker guards.
type Action func(ctx context.Context) error

// Counts is a snapshot of the breaker's counters.
type Counts struct {
	// Failures is the consecutive counted failure count.
	Failures int
	// Successes is the consecutive success count.
	Successes int
	// SlowCalls is the accumulated slow-call count.
	SlowCalls int
	// TotalCalls is the number of Execute invocations, admitted or not.
	TotalCalls uint64
	// Transitions is the number of state transitions so far.
	Transitions uint64
}

// Option configures a Breaker beyond its Config.
type Option func(*Breaker)

// WithLogger sets the structured logging sink. A breaker without a sink
// logs nothing; that is never an error.
func WithLogger(log *logger.Logger) Option {
	return func(b *Breaker) {
		if log != nil {
			b.log = log.WithComponent("breaker").WithFields(map[string]interface{}{
				logger.FieldBreaker: b.cfg.Name,
			})
		}
	}
}

// Breaker guards a unit of work with fault isolation: it tracks recent
// outcomes, fails fast once a failure or slowness threshold is crossed,
// and probes for recovery before resuming normal traffic.
//
// A Breaker is created once and lives for the application lifetime. It is
// safe for concurrent use; the guarded action runs outside the breaker's
// lock, so many calls may execute concurrently up to the bulkhead limit.
type Breaker struct {
	cfg Config
	log *logger.Logger

	permits    *gate
	totalCalls atomic.Uint64

	// mu serializes the fail-fast decision, every transition, and all
	// counter bookkeeping. It is never held while an action runs.
	mu             sync.Mutex
	state          State
	failures       int
	successes      int
	slowCalls      int
	transitions    uint64
	lastFailure    time.Time
	lastChange     time.Time
	openReason     string
	manuallyClosed bool
	messages       map[State]string
	listeners      map[string]Listener
	recoveryStop   chan struct{}
}

// New creates a breaker from cfg. Unset config fields get defaults.
func New(cfg Config, opts ...Option) *Breaker {
	cfg.ApplyDefaults()

	b := &Breaker{
		cfg:        cfg,
		state:      Closed,
		permits:    newGate(cfg.MaxConcurrentRequests),
		lastChange: time.Now(),
		messages:   make(map[State]string),
		listeners:  make(map[string]Listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs action through the breaker with the configured CallTimeout.
func (b *Breaker) Execute(ctx context.Context, action Action) error {
	return b.ExecuteTimeout(ctx, action, b.cfg.CallTimeout)
}

// ExecuteTimeout runs action through the breaker with an explicit timeout.
//
// It returns a *RejectedError when the bulkhead is full, a *CircuitError
// when the breaker refuses the call, the context error when the timeout
// or external cancellation fires first, and otherwise the action's own
// error after retries are exhausted.
func (b *Breaker) ExecuteTimeout(ctx context.Context, action Action, timeout time.Duration) error {
	b.totalCalls.Add(1)

	if !b.permits.tryAcquire() {
		b.logWarn("call rejected", map[string]interface{}{
			logger.FieldCount: b.cfg.MaxConcurrentRequests,
		})
		return &RejectedError{Breaker: b.cfg.Name, Limit: b.cfg.MaxConcurrentRequests}
	}
	defer b.permits.release()

	if timeout <= 0 {
		timeout = b.cfg.CallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := b.checkGate(ctx); err != nil {
		return err
	}
	return b.run(ctx, action)
}

// ExecuteResult runs a function that returns a value through the breaker.
func ExecuteResult[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

// checkGate consults the active state handler under the decision lock.
// Only one call passes the fail-fast check at a time; the lock is released
// before the action itself executes.
func (b *Breaker) checkGate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil

	case HalfOpen:
		// Probing is gated by the success counter on the success path,
		// never by the handler itself.
		return nil

	case Isolated:
		return b.circuitError(Isolated)

	case Open:
		remaining := b.cfg.OpenToHalfOpenWait - time.Since(b.lastChange)
		if remaining > 0 {
			if err := backoff.Sleep(ctx, remaining); err != nil {
				return err
			}
			// The wait ran out while this call was suspended: it still
			// reports the refusal, but the breaker moves to HalfOpen so
			// subsequent calls probe.
			err := b.circuitError(Open)
			b.transition(HalfOpen)
			return err
		}
		// The open window had already elapsed when this call arrived;
		// it becomes the first probe.
		b.transition(HalfOpen)
		return nil

	default:
		return b.circuitError(b.state)
	}
}

// run is the attempt loop: up to RetryCount+1 attempts with the configured
// backoff strategy between them. The action always runs unlocked.
func (b *Breaker) run(ctx context.Context, action Action) error {
	attempts := 1
	if b.cfg.RetryStrategy != nil {
		attempts = b.cfg.RetryCount + 1
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := action(ctx)
		elapsed := time.Since(start)

		if elapsed > b.cfg.SlowCallThreshold {
			b.recordSlowCall(elapsed)
		}

		if err == nil {
			b.recordSuccess()
			return nil
		}

		// A timeout or external cancellation is its own outcome: the
		// caller gave up waiting, the dependency did not fail.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if counted := b.recordFailure(err, attempt); !counted {
			return err
		}

		if attempt+1 >= attempts {
			return err
		}
		delay := b.cfg.RetryStrategy.Delay(attempt)
		if serr := backoff.Sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

// recordSuccess updates counters after a successful attempt.
func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes++
	b.failures = 0

	if b.state == HalfOpen && b.successes >= b.cfg.RequiredSuccessCount {
		b.logInfo("probe quota met, closing circuit", map[string]interface{}{
			logger.FieldCount: b.successes,
		})
		b.transition(Closed)
	}
}

// recordFailure updates counters after a failed attempt. It reports false
// when the failure filter excluded the error, which ends the attempt loop
// without counting or retrying.
func (b *Breaker) recordFailure(err error, attempt int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if !b.lastFailure.IsZero() && now.Sub(b.lastFailure) > b.cfg.CoolDownPeriod {
		// Failures separated by a long enough gap do not accumulate.
		b.failures = 0
	}
	b.lastFailure = now

	if b.cfg.FailureFilter != nil && !b.cfg.FailureFilter(err) {
		b.logDebug("failure excluded by filter", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return false
	}

	b.failures++
	b.successes = 0
	b.logWarn("call failed", map[string]interface{}{
		logger.FieldError:   err.Error(),
		logger.FieldAttempt: attempt,
		logger.FieldCount:   b.failures,
	})

	// A call can cross the slow-call and failure thresholds at once;
	// isolation always wins and only a reset leaves it.
	if b.failures >= b.cfg.MaxFailureCount && b.state != Isolated {
		b.transition(Open)
	}
	return true
}

// recordSlowCall counts a slow call; success or failure alike. Reaching
// the slow-call threshold forces the breaker into Isolated.
func (b *Breaker) recordSlowCall(elapsed time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.slowCalls++
	b.logWarn("slow call", map[string]interface{}{
		logger.FieldDuration: elapsed.Milliseconds(),
		logger.FieldCount:    b.slowCalls,
	})

	if b.slowCalls >= b.cfg.SlowCallCountThreshold {
		b.transition(Isolated)
	}
}

// transition moves the breaker to a new state. Caller must hold b.mu.
// It is a no-op when the state would not change; otherwise the transition
// counter increments and every listener observes the event exactly once.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.transitions++
	b.lastChange = time.Now()
	b.messages[to] = b.defaultMessage(to)

	switch to {
	case Closed:
		b.failures = 0
		b.successes = 0
		b.openReason = ""
	case HalfOpen:
		b.successes = 0
	}

	b.logInfo("state changed", map[string]interface{}{
		logger.FieldFrom: from.String(),
		logger.FieldTo:   to.String(),
	})

	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
	if to == Open && b.cfg.OnOpen != nil {
		b.cfg.OnOpen(b.openReason)
	}
	if to == Closed && b.cfg.OnClose != nil {
		b.cfg.OnClose()
	}
	b.notify(Event{Breaker: b.cfg.Name, From: from, To: to, At: b.lastChange})
}

// circuitError builds the fail-fast error for a state. Caller must hold b.mu.
func (b *Breaker) circuitError(state State) error {
	msg := b.messages[state]
	if msg == "" {
		msg = b.defaultMessage(state)
	}
	return &CircuitError{
		Breaker: b.cfg.Name,
		State:   state,
		Message: msg,
		Reason:  b.openReason,
	}
}

func (b *Breaker) defaultMessage(state State) string {
	return fmt.Sprintf("breaker %q is %s", b.cfg.Name, state)
}

// --- Observable state ---

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.cfg.Name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts returns a snapshot of the breaker's counters.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Counts{
		Failures:    b.failures,
		Successes:   b.successes,
		SlowCalls:   b.slowCalls,
		TotalCalls:  b.totalCalls.Load(),
		Transitions: b.transitions,
	}
}

// LastStateChange returns when the breaker last changed state.
func (b *Breaker) LastStateChange() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChange
}

// OpenReason returns the reason recorded by the last manual open, if any.
func (b *Breaker) OpenReason() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openReason
}

// ManuallyClosed reports whether the breaker was last closed manually.
func (b *Breaker) ManuallyClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.manuallyClosed
}

// InFlight returns the number of calls currently holding a permit.
func (b *Breaker) InFlight() int { return b.permits.inFlight() }

// Available returns the number of free bulkhead permits.
func (b *Breaker) Available() int { return b.permits.available() }

// StateMessage returns the fail-fast message for a state.
func (b *Breaker) StateMessage(state State) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := b.messages[state]; ok {
		return msg
	}
	return b.defaultMessage(state)
}

// SetStateMessage overrides the fail-fast message for a state. The next
// transition into that state reinstalls the generated default.
func (b *Breaker) SetStateMessage(state State, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[state] = msg
}

// --- logging helpers (nil sink is a no-op) ---

func (b *Breaker) logDebug(msg string, fields map[string]interface{}) {
	if b.log != nil {
		b.log.Debug(msg, fields)
	}
}

func (b *Breaker) logInfo(msg string, fields map[string]interface{}) {
	if b.log != nil {
		b.log.Info(msg, fields)
	}
}

func (b *Breaker) logWarn(msg string, fields map[string]interface{}) {
	if b.log != nil {
		b.log.Warn(msg, fields)
	}
}

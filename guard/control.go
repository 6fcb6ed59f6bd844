package guard

import (
	"time"

	"github.com/kbukum/guardkit/logger"
)

// Close forces the breaker into Closed and marks it manually closed.
// All counters reset, as after construction.
func (b *Breaker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.manuallyClosed = true
	b.openReason = ""
	b.transition(Closed)
	b.failures = 0
	b.successes = 0
	b.slowCalls = 0
	b.logInfo("manually closed", nil)
}

// OpenWithReason forces the breaker into Open and records the reason,
// which is attached to every circuit-broken error until the breaker
// closes again. Clears the manually-closed mark.
func (b *Breaker) OpenWithReason(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.openReason = reason
	b.manuallyClosed = false
	b.transition(Open)
	b.logInfo("manually opened", map[string]interface{}{
		logger.FieldReason: reason,
	})
}

// Isolate forces the breaker into Isolated. Every call fails fast until
// ResetIsolation, a recovery tick, or a manual Close.
func (b *Breaker) Isolate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transition(Isolated)
	b.logInfo("manually isolated", nil)
}

// ResetIsolation forces the breaker into Closed, clearing the
// manually-closed mark and the slow-call counter.
func (b *Breaker) ResetIsolation() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIsolationLocked()
}

func (b *Breaker) resetIsolationLocked() {
	b.manuallyClosed = false
	b.slowCalls = 0
	b.openReason = ""
	b.transition(Closed)
}

// StartRecovery starts a timer that returns the breaker from Isolated to
// Closed every interval. Starting an already-running timer or passing a
// non-positive interval is a no-op. The timer is independent of call
// traffic and of any in-flight call's cancellation.
func (b *Breaker) StartRecovery(interval time.Duration) {
	if interval <= 0 {
		return
	}
	b.mu.Lock()
	if b.recoveryStop != nil {
		b.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	b.recoveryStop = stop
	b.mu.Unlock()

	b.logInfo("recovery timer started", map[string]interface{}{
		logger.FieldDuration: interval.Milliseconds(),
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.recoverTick()
			}
		}
	}()
}

// recoverTick resets the breaker only when it is actually isolated, so a
// running timer never interferes with failure-driven Open state.
func (b *Breaker) recoverTick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Isolated {
		return
	}
	b.logInfo("recovery timer reset", nil)
	b.resetIsolationLocked()
}

// StopRecovery stops the recovery timer. Stopping a stopped timer is a
// no-op.
func (b *Breaker) StopRecovery() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recoveryStop != nil {
		close(b.recoveryStop)
		b.recoveryStop = nil
	}
}

// Shutdown releases the breaker's background resources: the recovery
// timer stops and all listeners detach. In-flight calls drain normally.
func (b *Breaker) Shutdown() {
	b.StopRecovery()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[string]Listener)
	b.logInfo("shut down", nil)
}

// Package guard provides a call-guarding circuit breaker with bulkhead
// admission control and retriable guarded execution.
//
// A Breaker wraps an arbitrary unit of work so a failing or slow
// dependency cannot exhaust the caller's resources. It tracks recent
// outcomes, fails fast once a failure or slowness threshold is crossed,
// and probes for recovery before resuming normal traffic.
//
// # States
//
//   - Closed: normal operation, calls pass through
//   - Open: calls wait out the open window, then fail fast
//   - HalfOpen: limited trust, successes close the circuit
//   - Isolated: forced off, every call fails fast until reset
//
// # Usage
//
//	b := guard.New(guard.Config{
//	    Name:            "payments",
//	    MaxFailureCount: 3,
//	    RetryCount:      2,
//	    RetryStrategy:   backoff.NewExponential(100*time.Millisecond, 2.0),
//	}, guard.WithLogger(logger.NewDefault("checkout")))
//
//	err := b.Execute(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, order)
//	})
//	switch {
//	case guard.IsRejected(err):      // bulkhead full
//	case guard.IsCircuitBroken(err): // breaker refused the call
//	case err != nil:                 // the dependency failed
//	}
//
// Admission is a non-blocking bulkhead check over MaxConcurrentRequests
// permits. The fail-fast decision is serialized by a single lock, but the
// guarded action runs unlocked, so a slow action never blocks other
// callers' admission checks.
package guard

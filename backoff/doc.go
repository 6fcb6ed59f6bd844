// Package backoff provides retry delay strategies for the guard package.
//
// A Strategy computes the delay before the next retry attempt from the
// attempt index alone. Strategies are interchangeable:
//
//   - Fixed: constant delay
//   - Incremental: initial + increment per attempt
//   - LinearJitter: incremental delay with +/-10% jitter
//   - Exponential: initial * factor^attempt
//   - Fibonacci: initial * Fib(attempt)
//   - Random: uniform delay in [min, max]
//   - Jitter: uniform delay in [0.5*initial, 1.5*initial]
//   - RoundRobin: rotates through sub-strategies by attempt index
//
// Example:
//
//	s := backoff.NewExponential(100*time.Millisecond, 2.0)
//	for attempt := 0; attempt < 5; attempt++ {
//	    if err := backoff.Sleep(ctx, s.Delay(attempt)); err != nil {
//	        return err
//	    }
//	}
package backoff

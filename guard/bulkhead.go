package guard

// gate is the bulkhead: a fixed pool of concurrency permits acquired
// without blocking at call entry and released unconditionally at exit.
type gate struct {
	sem chan struct{}
}

func newGate(limit int) *gate {
	return &gate{sem: make(chan struct{}, limit)}
}

// tryAcquire takes a permit without blocking. It reports false when the
// pool is exhausted; it never waits.
func (g *gate) tryAcquire() bool {
	select {
	case g.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g *gate) release() {
	<-g.sem
}

// inFlight returns the number of permits currently held.
func (g *gate) inFlight() int {
	return len(g.sem)
}

// available returns the number of free permits.
func (g *gate) available() int {
	return cap(g.sem) - len(g.sem)
}

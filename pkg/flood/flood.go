package flood

import "sync"

// Tracker counts rate-limit violations per client address and bans addresses
// that keep hammering the API after being told to slow down. A zero or
// negative threshold disables banning.
type Tracker struct {
	mu         sync.Mutex
	threshold  int
	violations map[string]int
}

func NewTracker(threshold int) *Tracker {
	return &Tracker{
		threshold:  threshold,
		violations: make(map[string]int),
	}
}

func (t *Tracker) Active() bool {
	return t.threshold > 0
}

// Report records one rate-limit violation for the address.
func (t *Tracker) Report(addr string) {
	if !t.Active() {
		return
	}
	t.mu.Lock()
	t.violations[addr]++
	t.mu.Unlock()
}

// IsBanned reports whether the address crossed the violation threshold.
func (t *Tracker) IsBanned(addr string) bool {
	if !t.Active() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.violations[addr] >= t.threshold
}

// Forgive decrements every address's violation count by one. Called
// periodically from a background janitor so bans decay instead of lasting
// for the life of the process.
func (t *Tracker) Forgive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, count := range t.violations {
		if count <= 1 {
			delete(t.violations, addr)
			continue
		}
		t.violations[addr] = count - 1
	}
}

package gemini

import (
	"context"
	"log"
	"sync"
	"time"
)

// GuardState is the circuit-breaker state of the quota/failure guard
type GuardState string

const (
	// StateClosed routes calls to the live API
	StateClosed GuardState = "live"
	// StateOpen routes every call straight to the offline generators
	StateOpen GuardState = "mocked"
	// StateHalfOpen allows a single live probe after the cool-down
	StateHalfOpen GuardState = "probing"
)

// Guard decides, per feature call, whether to hit the live API or fall back
// to offline generators. It trips Open on quota exhaustion or repeated
// failure and stays Open until an explicit key reset; an optional cool-down
// enables a HalfOpen probe instead. The guard is an owned object passed to
// services, not process-global state.
type Guard struct {
	mu       sync.Mutex
	state    GuardState
	openedAt time.Time
	coolDown time.Duration // 0 = stay open until explicit reset
	keys     *KeyStore
	notice   string
}

// GuardOption is a functional option for Guard
type GuardOption func(*Guard)

// WithCoolDown enables HalfOpen probing after d. Zero keeps the tripped
// guard open for the rest of the session unless a key is (re)submitted.
func WithCoolDown(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.coolDown = d
	}
}

// NewGuard creates a guard bound to a key store. With no resolvable key the
// guard starts Open: offline from the first call, no network attempts.
func NewGuard(keys *KeyStore, opts ...GuardOption) *Guard {
	g := &Guard{state: StateClosed, keys: keys}
	if !keys.HasKey() {
		g.state = StateOpen
		g.notice = "No API key configured. Using offline sample analysis."
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current state, promoting Open to HalfOpen once the
// cool-down has elapsed.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Guard) stateLocked() GuardState {
	if g.state == StateOpen && g.coolDown > 0 && time.Since(g.openedAt) >= g.coolDown {
		g.state = StateHalfOpen
	}
	return g.state
}

// UsingMockData reports whether calls are currently served offline
func (g *Guard) UsingMockData() bool {
	return g.State() == StateOpen
}

// Notice returns the message shown to users the last time the guard tripped
func (g *Guard) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notice
}

// allow reports whether a live attempt may proceed
func (g *Guard) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked() != StateOpen
}

// trip opens the circuit with a user-facing notice
func (g *Guard) trip(notice string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateOpen
	g.openedAt = time.Now()
	g.notice = notice
	log.Printf("Guard tripped: %s", notice)
}

// recordSuccess closes the circuit after a successful live call
func (g *Guard) recordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateClosed {
		log.Printf("Guard closed after successful live call")
	}
	g.state = StateClosed
	g.notice = ""
}

// SetAPIKey stores a user-submitted key and unconditionally resets the guard
// to Closed. Key validity is discovered lazily on the next live call.
func (g *Guard) SetAPIKey(key string) {
	g.keys.Set(key)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateClosed
	g.notice = ""
}

// Do runs live under the guard, falling back to mock whenever the circuit is
// open or the live call cannot be salvaged. A quota signal opens the circuit
// immediately; any other failure gets exactly one immediate same-arguments
// retry before the circuit opens. The returned bool reports whether the
// result came from the offline generator.
func Do[T any](ctx context.Context, g *Guard, live func(context.Context) (T, error), mock func() T) (T, bool, error) {
	if !g.allow() {
		return mock(), true, nil
	}

	result, err := live(ctx)
	if err == nil {
		g.recordSuccess()
		return result, false, nil
	}

	if IsQuotaExceeded(err) {
		g.trip("API quota exceeded. Switching to offline sample analysis for the rest of the session.")
		return mock(), true, nil
	}

	result, retryErr := live(ctx)
	if retryErr == nil {
		g.recordSuccess()
		return result, false, nil
	}

	log.Printf("Live call failed twice, falling back to offline data: %v", retryErr)
	g.trip("The analysis service is unavailable. Switching to offline sample analysis.")
	return mock(), true, nil
}

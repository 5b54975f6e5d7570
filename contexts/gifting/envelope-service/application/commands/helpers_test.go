package commands

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"redpacket/contexts/gifting/envelope-service/adapters/memory"
	application "redpacket/contexts/gifting/envelope-service/application"
)

var epoch = time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)

const testCurrency = "gold"

type fixedClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

type seqIDGen struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

// fakeScheduler records armed keys without running callbacks, so tests can
// assert on scheduling and fire timeouts deliberately.
type fakeScheduler struct {
	mu        sync.Mutex
	pending   map[string]func()
	at        map[string]time.Time
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		pending: make(map[string]func()),
		at:      make(map[string]time.Time),
	}
}

func (s *fakeScheduler) ScheduleAt(key string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = fn
	s.at[key] = at
}

func (s *fakeScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	delete(s.at, key)
	s.cancelled = append(s.cancelled, key)
}

func (s *fakeScheduler) Fire(t *testing.T, key string) {
	t.Helper()
	s.mu.Lock()
	fn, ok := s.pending[key]
	delete(s.pending, key)
	delete(s.at, key)
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no pending timer for key %q", key)
	}
	fn()
}

func (s *fakeScheduler) Armed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

type testEnv struct {
	store     *memory.Store
	ledger    *memory.Ledger
	scheduler *fakeScheduler
	clock     *fixedClock
	idGen     *seqIDGen
	settler   application.Settler
	announcer application.Announcer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:     memory.NewStore(),
		ledger:    memory.NewLedger(),
		scheduler: newFakeScheduler(),
		clock:     &fixedClock{at: epoch},
		idGen:     &seqIDGen{},
	}
	env.announcer = application.Announcer{
		Outbox: env.store,
		IDGen:  env.idGen,
	}
	env.settler = application.Settler{
		Registry:  env.store,
		Festive:   env.store,
		Ledger:    env.ledger,
		Archive:   env.store,
		Scheduler: env.scheduler,
		Announcer: env.announcer,
		Clock:     env.clock,
		RankCount: 10,
		Currency:  testCurrency,
	}
	return env
}

func (e *testEnv) seedUseCase() SeedPoolUseCase {
	return SeedPoolUseCase{
		Registry:  e.store,
		Ledger:    e.ledger,
		Scheduler: e.scheduler,
		Settler:   e.settler,
		Announcer: e.announcer,
		Clock:     e.clock,
		IDGen:     e.idGen,
		Timeout:   10 * time.Minute,
		Interval:  time.Minute,
		Currency:  testCurrency,
	}
}

func (e *testEnv) claimUseCase() ClaimUseCase {
	return ClaimUseCase{
		Registry:  e.store,
		Festive:   e.store,
		Settler:   e.settler,
		Announcer: e.announcer,
		Clock:     e.clock,
	}
}

func (e *testEnv) returnUseCase() ReturnPoolUseCase {
	return ReturnPoolUseCase{
		Registry: e.store,
		Settler:  e.settler,
		Clock:    e.clock,
		Interval: time.Minute,
	}
}

func (e *testEnv) festiveUseCase() FestiveBroadcastUseCase {
	return FestiveBroadcastUseCase{
		Registry:  e.store,
		Festive:   e.store,
		Scheduler: e.scheduler,
		Settler:   e.settler,
		Announcer: e.announcer,
		Clock:     e.clock,
		IDGen:     e.idGen,
		RoundTTL:  24 * time.Hour,
	}
}

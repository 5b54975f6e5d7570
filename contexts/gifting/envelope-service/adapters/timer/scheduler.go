package timer

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs one pending callback per key on in-process timers.
// Re-scheduling a key replaces its pending timer; Cancel on an unknown key
// is a no-op. Callbacks run on the timer goroutine and must be safe to race
// with a user-triggered settlement (the pool settle guard arbitrates).
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

func (s *Scheduler) ScheduleAt(key string, at time.Time, fn func()) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.timers[key]; ok {
		pending.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()

		s.logger.Info("scheduled timeout fired",
			"event", "gifting_timeout_fired",
			"module", "gifting/envelope-service",
			"layer", "adapter",
			"key", key,
		)
		fn()
	})
}

func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.timers[key]; ok {
		pending.Stop()
		delete(s.timers, key)
	}
}

// PendingCount reports how many timers are armed; used by tests and the
// worker status log.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

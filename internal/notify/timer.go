package notify

import (
	"context"
	"sync"
	"time"

	"Planner/internal/clock"

	"github.com/google/uuid"
)

// Sink receives reminders when their timers fire.
type Sink interface {
	Deliver(r Reminder)
}

// TimerScheduler runs reminders on in-process timers. Timers do not survive
// a restart; the handle index only ever points at timers from the current
// process, and stale handles cancel as no-ops.
type TimerScheduler struct {
	sink Sink
	now  clock.Now

	mu     sync.Mutex
	timers map[Handle]*time.Timer
}

func NewTimerScheduler(sink Sink, now clock.Now) *TimerScheduler {
	return &TimerScheduler{
		sink:   sink,
		now:    now,
		timers: make(map[Handle]*time.Timer),
	}
}

func (s *TimerScheduler) Schedule(_ context.Context, fireAt time.Time, title, body, correlationID string) (Handle, bool) {
	now := s.now()
	if !fireAt.After(now) {
		return "", false
	}
	h := Handle(uuid.NewString())
	r := Reminder{Title: title, Body: body, CorrelationID: correlationID, FireAt: fireAt}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[h] = time.AfterFunc(fireAt.Sub(now), func() {
		s.mu.Lock()
		delete(s.timers, h)
		s.mu.Unlock()
		s.sink.Deliver(r)
	})
	return h, true
}

func (s *TimerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

func (s *TimerScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending reports how many timers are live. Test hook.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

package charging

import (
	"sync"
	"time"
)

// LivenessTimer arms one one-shot watchdog per session id.
type LivenessTimer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func NewLivenessTimer(delay time.Duration) *LivenessTimer {
	return &LivenessTimer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

func (t *LivenessTimer) Delay() time.Duration {
	return t.delay
}

// Arm schedules fire after the fixed delay, replacing any timer already
// armed for sessionID. fire runs on its own goroutine.
func (t *LivenessTimer) Arm(sessionID string, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[sessionID]; ok {
		old.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		if t.timers[sessionID] == timer {
			delete(t.timers, sessionID)
		}
		t.mu.Unlock()
		fire()
	})
	t.timers[sessionID] = timer
}

// Cancel reports whether a timer was stopped before firing.
func (t *LivenessTimer) Cancel(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[sessionID]
	if !ok {
		return false
	}
	delete(t.timers, sessionID)
	return timer.Stop()
}

func (t *LivenessTimer) Armed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

func (t *LivenessTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

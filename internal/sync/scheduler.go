package sync

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop function is called.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// Ticker schedules on wall-clock time.
type Ticker struct{}

func (Ticker) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-quit:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// Manual runs tasks only when Tick or Advance is called.
type Manual struct {
	mu    sync.Mutex
	tasks map[int]*manualTask
	next  int
}

type manualTask struct {
	every   time.Duration
	elapsed time.Duration
	fn      func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

func (m *Manual) Every(d time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.tasks[id] = &manualTask{every: d, fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Tick runs every scheduled task once.
func (m *Manual) Tick() {
	for _, t := range m.snapshot() {
		t.fn()
	}
}

// Advance moves the clock forward by d and runs each task once per full
// interval that elapsed.
func (m *Manual) Advance(d time.Duration) {
	var due []func()
	m.mu.Lock()
	for _, t := range m.tasks {
		if t.every <= 0 {
			continue
		}
		t.elapsed += d
		for t.elapsed >= t.every {
			t.elapsed -= t.every
			due = append(due, t.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Pending returns the number of live tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) snapshot() []*manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out
}

package driver

import (
	"sync"
	"time"
)

// Handle stops a frame loop started by a Scheduler. Stop must not wait for
// an in-flight frame to return; it may be called from inside a frame.
type Handle interface {
	Stop()
}

// Scheduler invokes frame callbacks one at a time until stopped. It is the
// host's notion of "next display frame".
type Scheduler interface {
	Start(frame func()) Handle
}

// Ticker fires frames from a time.Ticker on its own goroutine.
type Ticker struct {
	Interval time.Duration
}

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

func (t Ticker) Start(frame func()) Handle {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	h := &tickerHandle{done: make(chan struct{})}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-tk.C:
				select {
				case <-h.done:
					return
				default:
				}
				frame()
			}
		}
	}()
	return h
}

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Manual fires frames only when Fire is called. Hosts with their own frame
// clock (a terminal UI, a headless export) drive the loop with it. One loop
// runs at a time; starting another replaces it.
type Manual struct {
	mu    sync.Mutex
	frame func()
	seq   uint64
}

func (m *Manual) Start(frame func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.frame = frame
	return &manualHandle{m: m, seq: m.seq}
}

// Fire runs one frame of the current loop and reports whether one ran.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	frame := m.frame
	m.mu.Unlock()
	if frame == nil {
		return false
	}
	frame()
	return true
}

// Running reports whether a loop is started and not stopped.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame != nil
}

type manualHandle struct {
	m   *Manual
	seq uint64
}

func (h *manualHandle) Stop() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.seq == h.seq {
		h.m.frame = nil
	}
}

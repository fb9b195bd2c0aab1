package scene

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// MaxStep caps the dt of a single tick so a stalled process does not release
// a burst of spawns on resume.
const MaxStep = 100 * time.Millisecond

// Scheduler steps a scene on a fixed tick. It is the only goroutine that
// mutates fractal nodes.
type Scheduler struct {
	scene        *Scene
	clock        Clock
	tickInterval time.Duration

	isPaused  atomic.Bool
	tickCount atomic.Uint64

	mu       sync.Mutex
	lastTick time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

func NewScheduler(scene *Scene, tickInterval time.Duration, clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{
		scene:        scene,
		clock:        clock,
		tickInterval: tickInterval,
		lastTick:     clock.Now(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the tick loop. A stopped scheduler cannot be started again.
func (s *Scheduler) Start() {
	select {
	case <-s.stopChan:
		return
	default:
	}
	if s.running.CompareAndSwap(false, true) {
		s.mu.Lock()
		s.lastTick = s.clock.Now()
		s.mu.Unlock()

		s.wg.Add(1)
		go s.loop()
		log.Printf("[scheduler] Started, tick %v", s.tickInterval)
	}
}

// Stop halts the loop and waits for the tick in progress. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.running.CompareAndSwap(true, false) {
			s.wg.Wait()
			log.Printf("[scheduler] Stopped after %d ticks", s.tickCount.Load())
		}
	})
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick steps the scene by the clock time since the previous tick, clamped to
// MaxStep. While paused the clock is consumed but the scene does not move.
// Returns the applied dt.
func (s *Scheduler) Tick() time.Duration {
	now := s.clock.Now()

	s.mu.Lock()
	dt := now.Sub(s.lastTick)
	s.lastTick = now
	s.mu.Unlock()

	if s.isPaused.Load() {
		return 0
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	if dt < 0 {
		dt = 0
	}

	s.scene.Step(dt)
	s.tickCount.Add(1)
	return dt
}

func (s *Scheduler) Pause() {
	if s.isPaused.CompareAndSwap(false, true) {
		log.Printf("[scheduler] Paused")
	}
}

func (s *Scheduler) Resume() {
	if s.isPaused.CompareAndSwap(true, false) {
		log.Printf("[scheduler] Resumed")
	}
}

func (s *Scheduler) IsPaused() bool { return s.isPaused.Load() }
func (s *Scheduler) IsRunning() bool { return s.running.Load() }
func (s *Scheduler) Ticks() uint64 { return s.tickCount.Load() }

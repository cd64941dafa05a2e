package app

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/mediafetch-go/internal/domain"
)

// ProgressTracker turns received chunk sizes into percent notifications
type ProgressTracker struct {
	config domain.ProgressConfig
	notify func(domain.ProgressState)
	intn   func(n int) int
}

// NewProgressTracker creates a tracker. notify receives every percent change
// and may be nil.
func NewProgressTracker(config domain.ProgressConfig, notify func(domain.ProgressState)) *ProgressTracker {
	defaults := domain.DefaultConfig().Progress
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.MinStep <= 0 {
		config.MinStep = defaults.MinStep
	}
	if config.MaxStep < config.MinStep {
		config.MaxStep = config.MinStep
	}
	if config.Ceiling <= 0 || config.Ceiling >= 100 {
		config.Ceiling = defaults.Ceiling
	}
	if notify == nil {
		notify = func(domain.ProgressState) {}
	}

	return &ProgressTracker{
		config: config,
		notify: notify,
		intn:   rand.Intn,
	}
}

// ProgressHandle tracks one download attempt
type ProgressHandle struct {
	tracker  *ProgressTracker
	total    int64
	received int64
	state    domain.ProgressState
	finished bool
	stopped  bool

	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start begins tracking an attempt. A total of zero or less means the size is
// unknown and progress is simulated until Finish.
func (t *ProgressTracker) Start(totalBytes int64) *ProgressHandle {
	h := &ProgressHandle{
		tracker: t,
		total:   totalBytes,
		state:   domain.InitialProgress(),
		stopCh:  make(chan struct{}),
	}

	if totalBytes <= 0 {
		h.state.Mode = domain.ProgressIndeterminate
		t.notify(h.state)
		h.wg.Add(1)
		go h.tick()
	}

	return h
}

// OnChunk records n received bytes
func (h *ProgressHandle) OnChunk(n int) {
	if n <= 0 {
		return
	}

	h.mu.Lock()
	if h.finished || h.stopped {
		h.mu.Unlock()
		return
	}
	h.received += int64(n)
	if h.state.Mode != domain.ProgressDeterminate {
		h.mu.Unlock()
		return
	}

	percent := int(math.Round(float64(h.received) / float64(h.total) * 100))
	if percent > 100 {
		percent = 100
	}
	changed := percent > h.state.Percent
	if changed {
		h.state.Percent = percent
	}
	state := h.state
	h.mu.Unlock()

	if changed {
		h.tracker.notify(state)
	}
}

// Finish stops ticking and leaves the percent at 100
func (h *ProgressHandle) Finish() {
	h.stopTicker()

	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	changed := h.state.Percent != 100
	h.state.Percent = 100
	state := h.state
	h.mu.Unlock()

	if changed {
		h.tracker.notify(state)
	}
}

// Stop cancels ticking without completing the progress
func (h *ProgressHandle) Stop() {
	h.stopTicker()

	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

// State returns the current progress
func (h *ProgressHandle) State() domain.ProgressState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// stopTicker returns once the ticker goroutine, if any, has exited
func (h *ProgressHandle) stopTicker() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	h.wg.Wait()
}

func (h *ProgressHandle) tick() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.tracker.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.advance()
		}
	}
}

func (h *ProgressHandle) advance() {
	cfg := h.tracker.config

	h.mu.Lock()
	if h.finished || h.stopped || h.state.Percent >= cfg.Ceiling {
		h.mu.Unlock()
		return
	}
	step := cfg.MinStep + h.tracker.intn(cfg.MaxStep-cfg.MinStep+1)
	percent := h.state.Percent + step
	if percent > cfg.Ceiling {
		percent = cfg.Ceiling
	}
	h.state.Percent = percent
	state := h.state
	h.mu.Unlock()

	h.tracker.notify(state)
}

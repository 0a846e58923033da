package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	// checkInterval is the fixed cadence of the reconciliation loop. There is
	// no backoff on sustained feed failure: failed accounts are simply
	// retried on the next tick.
	checkInterval = 15 * time.Second
	// startupDelay gives the process a moment to finish booting before the
	// first pass.
	startupDelay = 5 * time.Second
	// tickTimeout bounds one full pass across all bank accounts.
	tickTimeout = time.Minute
)

// Manager supervises the reconciliation loop lifecycle.
type Manager struct {
	engine  *Engine
	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewManager creates a manager for the given engine.
func NewManager(engine *Engine) *Manager {
	return &Manager{
		engine: engine,
		stopCh: make(chan struct{}),
	}
}

// Start launches the background loop. Safe to call more than once.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	m.ticker = time.NewTicker(checkInterval)

	m.wg.Add(1)
	go m.loop()

	log.Infof("[Reconcile Manager] Started, first pass in %s then every %s", startupDelay, checkInterval)
}

// Stop halts the loop and waits for an in-flight tick to finish. The lock is
// held across the wait so a concurrent Start cannot launch a new loop before
// the old one has exited; the loop itself never takes the lock.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Reconcile Manager] Stopping...")
	m.ticker.Stop()
	close(m.stopCh)
	m.running = false

	m.wg.Wait()
	log.Info("[Reconcile Manager] Stopped")
}

// IsRunning reports whether the loop is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) loop() {
	defer m.wg.Done()

	startup := time.NewTimer(startupDelay)
	defer startup.Stop()

	select {
	case <-m.stopCh:
		return
	case <-startup.C:
		m.runTick()
	}

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.ticker.C:
			m.runTick()
		}
	}
}

// runTick executes one engine pass, isolating panics so a bad cycle never
// kills the loop.
func (m *Manager) runTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Reconcile Manager] tick panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	checked, updated, err := m.engine.RunCycle(ctx)
	if err != nil {
		log.Errorf("[Reconcile Manager] cycle failed: %v", err)
		return
	}
	if checked > 0 || updated > 0 {
		log.Infof("[Reconcile Manager] cycle done: checked=%d updated=%d", checked, updated)
	}
}

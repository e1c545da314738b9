package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cloudmask/internal/logger"
)

// DefaultTimeout bounds how long a single component may take to stop.
const DefaultTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

// Manager cancels its context on SIGINT or SIGTERM and then stops the
// registered components in reverse order.
type Manager struct {
	components []Shutdownable
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	sigChan    chan os.Signal
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		logger:  log,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen starts watching for termination signals until Shutdown runs.
func (m *Manager) Listen() {
	m.mu.Lock()
	if m.sigChan != nil {
		m.mu.Unlock()
		return
	}
	m.sigChan = make(chan os.Signal, 1)
	sigChan := m.sigChan
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	m.mu.Unlock()

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Warning("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		}
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}

	m.logger.Debug("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			component.Shutdown()
		}()

		select {
		case <-finished:
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
			})
		}
	}

	m.logger.Debug("ShutdownManager", "shutdown sequence completed", nil)
}

// Context is cancelled once shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Package messaging implements the in-process event bus that connects
// the progression write path to its reactive side effects.
package messaging

import (
	"errors"
	"sync"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ErrEventBusClosed is returned when publishing to a closed bus.
var ErrEventBusClosed = errors.New("messaging: event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// Single-instance deployment; handler errors are logged, never retried,
// and never fail the publish.
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus implements shared.EventPublisher.
type InMemoryEventBus struct {
	mu        sync.RWMutex
	handlers  map[shared.EventType][]shared.EventHandler
	asyncMode bool
	workers   chan struct{}
	log       *logger.Logger
	closed    bool
	wg        sync.WaitGroup
}

// Config configures the event bus.
type Config struct {
	// AsyncMode runs handlers on their own goroutines, bounded by
	// WorkerPoolSize. Synchronous mode is used in tests.
	AsyncMode      bool
	WorkerPoolSize int
	Logger         *logger.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new bus.
func NewInMemoryEventBus(cfg Config) *InMemoryEventBus {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}
	return &InMemoryEventBus{
		handlers:  make(map[shared.EventType][]shared.EventHandler),
		asyncMode: cfg.AsyncMode,
		workers:   make(chan struct{}, cfg.WorkerPoolSize),
		log:       cfg.Logger.With(logger.String("component", "eventbus")),
	}
}

// Register subscribes a handler to every event type it declares.
func (b *InMemoryEventBus) Register(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	for _, t := range handler.HandledTypes() {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	return nil
}

// Publish implements shared.EventPublisher.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		if b.asyncMode {
			b.executeAsync(event, handler)
		} else {
			b.execute(event, handler)
		}
	}
	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)
	b.workers <- struct{}{}
	go func() {
		defer func() {
			<-b.workers
			b.wg.Done()
			if r := recover(); r != nil {
				b.log.Error("handler panicked",
					logger.String("event_type", string(event.EventType())),
					logger.Any("panic", r))
			}
		}()
		b.execute(event, handler)
	}()
}

func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) {
	if err := handler.Handle(event); err != nil {
		b.log.Error("handler error",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err))
	}
}

// Close stops the bus after in-flight async handlers drain. Closing an
// already-closed bus is a no-op.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
	return nil
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)

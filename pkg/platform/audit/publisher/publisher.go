// Package publisher provides fire-and-forget audit emission over any
// audit.Store, with an optional bounded async buffer so request paths never
// block on persistence.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "soko/pkg/domain"
	audit "soko/pkg/platform/audit"
)

// ErrBufferFull is returned when async emission cannot enqueue an event.
// Audit is best-effort; callers log and move on.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// lister is implemented by stores that support per-user queries.
type lister interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error)
}

// Publisher writes audit events to a store, synchronously by default or
// through a bounded channel when configured with WithAsyncBuffer.
type Publisher struct {
	store audit.Store

	buffer    chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once

	// mu orders Emit against Close: Close takes the write lock before
	// closing the buffer, so no Emit can send on a closed channel.
	mu     sync.RWMutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given channel
// capacity. When the buffer is full, Emit drops the event and returns
// ErrBufferFull rather than blocking the request path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// NewPublisher creates a publisher over the given store. Close must be
// called to drain the buffer when async mode is enabled.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// The request context is long gone by the time the event lands.
		if err := p.store.Append(context.Background(), event); err != nil {
			slog.Warn("audit append failed", "action", event.Action, "error", err)
		}
	}
}

// Emit records an event. The timestamp is stamped if the caller left it
// zero. In async mode a full buffer drops the event with ErrBufferFull;
// a closed publisher reports ErrClosed instead of panicking.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns events for a user when the underlying store supports it.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	l, ok := p.store.(lister)
	if !ok {
		return nil, errors.New("audit store does not support listing")
	}
	return l.ListByUser(ctx, userID)
}

// Close stops accepting events and drains whatever is buffered. Safe to
// call more than once, and safe against concurrent Emit.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// DispatcherConfig controls queue sizing and backpressure behavior.
type DispatcherConfig struct {
	BufferSize int
	DropIfFull bool
}

// Dispatcher decouples event producers from sink latency: events are
// queued on a buffered channel and delivered in order by a single
// background worker. Close drains the queue before returning.
//
// All methods are safe on a nil receiver.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	stop       chan struct{}
	dropIfFull bool

	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
	worker  sync.WaitGroup
}

// NewDispatcher starts the delivery worker. A nil sink discards events.
func NewDispatcher(cfg DispatcherConfig, sink Sink) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, buffer),
		stop:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}

	d.worker.Add(1)
	go d.deliver()

	return d
}

func (d *Dispatcher) deliver() {
	defer d.worker.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain flushes whatever is already queued at shutdown.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues an event for delivery. With DropIfFull the call never
// blocks: a full queue increments the drop counter instead. Without it
// the call blocks until there is room, the context ends, or the
// dispatcher closes. Events emitted after Close are discarded.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops intake, waits for queued events to be delivered, and may
// be called more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.worker.Wait()
	})
}

// Dropped reports how many events were discarded under backpressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

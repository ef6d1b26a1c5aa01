package notify

import (
	"context"
	"sync"
	"time"

	"event-ticketing/pkg/metrics"

	"go.uber.org/zap"
)

type job struct {
	kind string
	run  func(ctx context.Context) error
}

// Dispatcher is a Sink backed by a bounded queue and a fixed worker pool.
// When the queue is full new work is dropped.
type Dispatcher struct {
	notifier Notifier
	bus      EventBus
	queue    chan job
	workers  int
	timeout  time.Duration
	log      *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(notifier Notifier, bus EventBus, workers, buffer int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		notifier: notifier,
		bus:      bus,
		queue:    make(chan job, buffer),
		workers:  workers,
		timeout:  timeout,
		log:      log.With(zap.String("component", "dispatcher")),
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.log.Info("Dispatcher started", zap.Int("workers", d.workers), zap.Int("buffer", cap(d.queue)))
}

// Stop refuses new work and waits for queued work to drain or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("Dispatcher drained")
		return nil
	case <-ctx.Done():
		d.log.Warn("Dispatcher stopped before draining", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

func (d *Dispatcher) Notify(n Notification) {
	d.enqueue(job{
		kind: string(n.Kind),
		run: func(ctx context.Context) error {
			return d.notifier.Send(ctx, n)
		},
	})
}

func (d *Dispatcher) Publish(e DomainEvent) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	d.enqueue(job{
		kind: string(e.Kind),
		run: func(ctx context.Context) error {
			return d.bus.Publish(ctx, e)
		},
	})
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.Dispatch(j.kind, "dropped")
		d.log.Warn("Dispatcher closed, dropping delivery", zap.String("kind", j.kind))
		return
	}

	select {
	case d.queue <- j:
		metrics.DispatchQueueLength(len(d.queue))
	default:
		metrics.Dispatch(j.kind, "dropped")
		d.log.Warn("Dispatch queue full, dropping delivery", zap.String("kind", j.kind))
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for j := range d.queue {
		d.deliver(j)
		metrics.DispatchQueueLength(len(d.queue))
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.Dispatch(j.kind, "failed")
			d.log.Error("Delivery panicked", zap.String("kind", j.kind), zap.Any("panic", r))
		}
	}()

	if err := j.run(ctx); err != nil {
		metrics.Dispatch(j.kind, "failed")
		d.log.Error("Delivery failed", zap.Error(err), zap.String("kind", j.kind))
		return
	}
	metrics.Dispatch(j.kind, "delivered")
}

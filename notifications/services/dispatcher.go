// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/qolzam/forum/notifications/models"
)

// Delivery outcomes
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

const defaultDeliveryTimeout = 5 * time.Second

// Sink receives notifications from the dispatcher workers.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n *models.Notification) error
}

// DispatcherConfig sizes the dispatcher.
type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
}

type envelope struct {
	notification models.Notification
	requestID    string
}

// Dispatcher delivers notifications to its sinks on background workers.
// Notify never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	queue   chan envelope
	sinks   []Sink
	metrics *observability.MetricsCollector
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start to launch the workers.
func NewDispatcher(cfg DispatcherConfig, metrics *observability.MetricsCollector, sinks ...Sink) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	return &Dispatcher{
		queue:   make(chan envelope, cfg.QueueSize),
		sinks:   sinks,
		metrics: metrics,
		workers: cfg.Workers,
		timeout: cfg.DeliveryTimeout,
	}
}

// Start launches the workers. It is a no-op after the first call.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Notify enqueues n and reports whether it was accepted.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) bool {
	if n.ObjectId == uuid.Nil {
		n.ObjectId = uuid.Must(uuid.NewV4())
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ctx, n, "dispatcher closed")
		return false
	}
	select {
	case d.queue <- envelope{notification: n, requestID: log.RequestID(ctx)}:
		d.setDepth()
		return true
	default:
		d.drop(ctx, n, "queue full")
		return false
	}
}

// Close stops accepting notifications and waits until the queued ones are delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	if !d.started {
		// Nobody will drain the queue; drain it here.
		d.started = true
		d.wg.Add(1)
		go d.run()
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for env := range d.queue {
		d.setDepth()
		d.deliver(env)
	}
}

func (d *Dispatcher) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(log.WithRequestID(context.Background(), env.requestID), d.timeout)
	defer cancel()

	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, &env.notification); err != nil {
			log.WarnWithContext(ctx, "notification %s to %s failed on %s sink: %v",
				env.notification.Type, env.notification.Recipient, sink.Name(), err)
			d.record(OutcomeFailed)
			continue
		}
		d.record(OutcomeDelivered)
	}
}

func (d *Dispatcher) drop(ctx context.Context, n models.Notification, reason string) {
	log.WarnWithContext(ctx, "notification %s to %s dropped: %s", n.Type, n.Recipient, reason)
	d.record(OutcomeDropped)
}

func (d *Dispatcher) record(outcome string) {
	if d.metrics != nil {
		d.metrics.RecordNotification(outcome)
	}
}

func (d *Dispatcher) setDepth() {
	if d.metrics != nil {
		d.metrics.NotificationQueue.Set(float64(len(d.queue)))
	}
}

// Package notify fans task events out to notification sinks in the
// background so that publishers never wait on delivery.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/model"
)

// deliverTimeout is the maximum time allowed for one sink delivery.
const deliverTimeout = 10 * time.Second

// Sink delivers a task event somewhere: the notification outbox, a log,
// or a push gateway.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event model.TaskEvent) error
}

// Stats counts what happened to published events.
type Stats struct {
	Published int
	Dropped   int
	Delivered int
	Failed    int
}

// Dispatcher queues events on a buffered channel and delivers them to
// every sink from a single worker goroutine.
type Dispatcher struct {
	logger  zerolog.Logger
	sinks   []Sink
	eventCh chan model.TaskEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
	stats   Stats
}

// New creates a Dispatcher holding up to buffer pending events.
func New(logger zerolog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		logger:  logger.With().Str("component", "notify").Logger(),
		sinks:   sinks,
		eventCh: make(chan model.TaskEvent, buffer),
	}
}

// Start launches the delivery worker. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.run(d.stopCh, d.doneCh)
}

// Stop halts the worker after delivering events already queued.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	done := d.doneCh
	d.mu.Unlock()

	<-done
}

// Publish queues an event without blocking. When the queue is full the
// event is dropped and logged.
func (d *Dispatcher) Publish(event model.TaskEvent) {
	select {
	case d.eventCh <- event:
		d.count(func(s *Stats) { s.Published++ })
	default:
		d.count(func(s *Stats) { s.Dropped++ })
		d.logger.Warn().
			Str("task_id", event.TaskID).
			Str("channel", string(event.Channel)).
			Msg("notification queue full, dropping event")
	}
}

// Stats returns a snapshot of the delivery counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// run is the worker loop.
func (d *Dispatcher) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case event := <-d.eventCh:
			d.deliver(event)
		case <-stopCh:
			// Drain what is already queued, then exit.
			for {
				select {
				case event := <-d.eventCh:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver hands one event to every sink. A failing sink does not stop
// the others.
func (d *Dispatcher) deliver(event model.TaskEvent) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := sink.Deliver(ctx, event)
		cancel()

		if err != nil {
			d.count(func(s *Stats) { s.Failed++ })
			d.logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("task_id", event.TaskID).
				Str("channel", string(event.Channel)).
				Msg("failed to deliver notification")
			continue
		}
		d.count(func(s *Stats) { s.Delivered++ })
	}
}

func (d *Dispatcher) count(fn func(*Stats)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.stats)
}

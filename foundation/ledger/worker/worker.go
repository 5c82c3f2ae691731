// Package worker implements the background event relay and the periodic
// conservation audit for the ledger.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/segmentio/kafka-go"
)

// auditInterval represents the interval for running the conservation audit
// over the current balances.
const auditInterval = time.Minute

// eventBuffer sizes the relay channel. Signals never block a committing
// operation; when the buffer is full the event is dropped from the relay
// with a warning and remains in the journal.
const eventBuffer = 256

// =============================================================================

// Config represents the configuration required to start the worker.
type Config struct {
	Evts         *events.Events
	KafkaBrokers []string
	KafkaTopic   string
}

// Worker manages the relay and audit workflows for the ledger.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	eventCh   chan database.Event
	evts      *events.Events
	producer  *kafka.Writer
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, cfg Config, evHandler state.EventHandler) {
	w := Worker{
		state:     st,
		ticker:    time.NewTicker(auditInterval),
		shut:      make(chan struct{}),
		eventCh:   make(chan database.Event, eventBuffer),
		evts:      cfg.Evts,
		evHandler: evHandler,
	}

	// Forwarding to a broker is optional and only wired when brokers
	// are configured.
	if len(cfg.KafkaBrokers) > 0 {
		w.producer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.relayOperations,
		w.auditOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()

	if w.producer != nil {
		w.evHandler("worker: shutdown: close producer")
		if err := w.producer.Close(); err != nil {
			w.evHandler("worker: shutdown: close producer: ERROR: %s", err)
		}
	}
}

// SignalEvent hands a committed event to the relay. The signal never blocks
// the committing operation; a full relay drops the event with a warning.
func (w *Worker) SignalEvent(event database.Event) {
	select {
	case w.eventCh <- event:
	default:
		w.evHandler("worker: SignalEvent: WARNING: relay full, dropping %s event", event.Kind())
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

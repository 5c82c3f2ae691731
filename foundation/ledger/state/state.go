// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"sync/atomic"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
)

// EventHandler defines a function that is called when events occur in the
// processing of ledger operations.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for relaying committed events and running
// the background conservation audit.
type Worker interface {
	Shutdown()
	SignalEvent(event database.Event)
}

// Releaser interface represents the behavior required to be implemented by
// the host collaborator that moves value out of the ledger. The release
// must report success or failure synchronously.
type Releaser interface {
	Release(accountID database.AccountID, amount uint64) error
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Serializer
	Releaser  Releaser
	EvHandler EventHandler
}

// State manages the ledger database and guards every mutating operation
// against logical reentrancy.
type State struct {
	genesis   genesis.Genesis
	admin     database.AccountID
	evHandler EventHandler
	releaser  Releaser

	guard atomic.Bool
	db    *database.Database

	Worker Worker
}

// New constructs a new ledger state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	admin, err := database.ToAccountID(cfg.Genesis.Admin)
	if err != nil {
		return nil, err
	}

	// Access the database which replays the journal from storage.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:   cfg.Genesis,
		admin:     admin,
		evHandler: ev,
		releaser:  cfg.Releaser,
		db:        db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the ledger.

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {

	// Make sure the journal storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all event relay and audit activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// acquireGuard marks a mutating operation in flight. While the guard is
// held any nested mutating call fails fast with ErrReentrantCall. The
// returned release function must run on every exit path.
func (s *State) acquireGuard() (release func(), err error) {
	if !s.guard.CompareAndSwap(false, true) {
		return nil, database.ErrReentrantCall
	}

	return func() { s.guard.Store(false) }, nil
}

// signalEvents forwards committed events to the worker once the operation
// has durably committed. Failed operations never reach this point.
func (s *State) signalEvents(events []database.Event) {
	for _, event := range events {
		s.evHandler("state: event: %s: %+v", event.Kind(), event)

		if s.Worker != nil {
			s.Worker.SignalEvent(event)
		}
	}
}

// Package memory implements the database.Serializer interface keeping the
// journal in memory. Used for testing and ephemeral ledgers.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Memory represents the serialization implementation for keeping journal
// records in memory. This implements the database.Serializer interface.
type Memory struct {
	mu      sync.RWMutex
	records []database.RecordData
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified journal record and appends it in memory.
func (m *Memory) Write(record database.RecordData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return nil
}

// GetRecord returns the record with the specified sequence number.
func (m *Memory) GetRecord(seq uint64) (database.RecordData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if seq == 0 || seq > uint64(len(m.records)) {
		return database.RecordData{}, errors.New("record not found")
	}

	return m.records[seq-1], nil
}

// ForEach returns an iterator to walk through all the records starting
// with record 1.
func (m *Memory) ForEach() database.Iterator {
	return &iterator{memory: m}
}

// Reset clears out the journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

// iterator represents the iteration implementation for walking through
// the in-memory journal. This implements the database.Iterator interface.
type iterator struct {
	memory  *Memory
	current uint64
	eoj     bool
}

// Next retrieves the next record from memory.
func (i *iterator) Next() (database.RecordData, error) {
	if i.eoj {
		return database.RecordData{}, errors.New("end of journal")
	}

	i.current++
	record, err := i.memory.GetRecord(i.current)
	if err != nil {
		i.eoj = true
	}

	return record, err
}

// Done returns the end of journal value.
func (i *iterator) Done() bool {
	return i.eoj
}

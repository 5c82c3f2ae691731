// Package leveldb implements the database.Serializer interface storing the
// journal in a LevelDB key/value store with CBOR encoded records.
package leveldb

import (
	"encoding/binary"
	"errors"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/fxamacker/cbor/v2"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// recordPrefix namespaces journal records inside the store.
const recordPrefix = "journal:"

// LevelDB represents the serialization implementation for reading and
// storing journal records in a LevelDB store. This implements the
// database.Serializer interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the LevelDB store at the specified path for use.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

// Close closes the underlying store.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write takes the specified journal record, encodes it with CBOR and
// stores it keyed by the big-endian sequence number.
func (l *LevelDB) Write(record database.RecordData) error {
	data, err := cbor.Marshal(record)
	if err != nil {
		return err
	}

	return l.db.Put(recordKey(record.Seq), data, nil)
}

// GetRecord returns the record with the specified sequence number.
func (l *LevelDB) GetRecord(seq uint64) (database.RecordData, error) {
	data, err := l.db.Get(recordKey(seq), nil)
	if err != nil {
		if errors.Is(err, ldberrors.ErrNotFound) {
			return database.RecordData{}, errors.New("record not found")
		}
		return database.RecordData{}, err
	}

	var record database.RecordData
	if err := cbor.Unmarshal(data, &record); err != nil {
		return database.RecordData{}, err
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting
// with record 1. Big-endian keys keep the natural iteration order equal
// to the sequence order.
func (l *LevelDB) ForEach() database.Iterator {
	return &iterator{iter: l.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)}
}

// Reset clears out the journal records from the store.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		if err := l.db.Delete(iter.Key(), nil); err != nil {
			return err
		}
	}

	return iter.Error()
}

// recordKey forms the store key for the specified sequence number.
func recordKey(seq uint64) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], seq)
	return key
}

// =============================================================================

// iterator represents the iteration implementation for walking through
// the records in the store. This implements the database.Iterator interface.
type iterator struct {
	iter ldbIterator
	eoj  bool
}

// ldbIterator captures the part of the LevelDB iterator contract in use.
type ldbIterator interface {
	Next() bool
	Value() []byte
	Error() error
	Release()
}

// Next retrieves the next record from the store.
func (i *iterator) Next() (database.RecordData, error) {
	if i.eoj {
		return database.RecordData{}, errors.New("end of journal")
	}

	if !i.iter.Next() {
		i.eoj = true
		i.iter.Release()
		if err := i.iter.Error(); err != nil {
			return database.RecordData{}, err
		}
		return database.RecordData{}, errors.New("end of journal")
	}

	var record database.RecordData
	if err := cbor.Unmarshal(i.iter.Value(), &record); err != nil {
		return database.RecordData{}, err
	}

	return record, nil
}

// Done returns the end of journal value.
func (i *iterator) Done() bool {
	return i.eoj
}

// Package pg implements the database.Serializer interface storing the
// journal in a Postgres table.
package pg

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	_ "github.com/lib/pq" // Register the postgres driver.
)

// PG represents the serialization implementation for reading and storing
// journal records in a Postgres table. This implements the
// database.Serializer interface.
type PG struct {
	db *sql.DB
}

// New opens a Postgres connection for use and ensures the journal
// table exists.
func New(dsn string) (*PG, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	const create = `CREATE TABLE IF NOT EXISTS ledger_journal (
		seq    BIGINT PRIMARY KEY,
		record JSONB  NOT NULL
	)`

	if _, err := db.Exec(create); err != nil {
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &PG{db: db}, nil
}

// Close closes the underlying connection pool.
func (p *PG) Close() error {
	return p.db.Close()
}

// Write takes the specified journal record and inserts it. The primary key
// on the sequence number rejects a duplicate commit.
func (p *PG) Write(record database.RecordData) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	const insert = `INSERT INTO ledger_journal (seq, record) VALUES ($1, $2)`

	if _, err := p.db.Exec(insert, record.Seq, data); err != nil {
		return err
	}

	return nil
}

// GetRecord returns the record with the specified sequence number.
func (p *PG) GetRecord(seq uint64) (database.RecordData, error) {
	const query = `SELECT record FROM ledger_journal WHERE seq = $1`

	var data []byte
	if err := p.db.QueryRow(query, seq).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.RecordData{}, errors.New("record not found")
		}
		return database.RecordData{}, err
	}

	var record database.RecordData
	if err := json.Unmarshal(data, &record); err != nil {
		return database.RecordData{}, err
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting
// with record 1.
func (p *PG) ForEach() database.Iterator {
	const query = `SELECT record FROM ledger_journal ORDER BY seq`

	rows, err := p.db.Query(query)
	return &iterator{rows: rows, err: err}
}

// Reset clears out the journal table.
func (p *PG) Reset() error {
	const truncate = `TRUNCATE TABLE ledger_journal`

	_, err := p.db.Exec(truncate)
	return err
}

// =============================================================================

// iterator represents the iteration implementation for walking through
// the journal rows. This implements the database.Iterator interface.
type iterator struct {
	rows *sql.Rows
	err  error
	eoj  bool
}

// Next retrieves the next record from the table.
func (i *iterator) Next() (database.RecordData, error) {
	if i.eoj {
		return database.RecordData{}, errors.New("end of journal")
	}

	// Surface a query failure before marking the iteration done so the
	// caller observes the error rather than an empty journal.
	if i.err != nil {
		err := i.err
		i.err = nil
		return database.RecordData{}, err
	}

	if i.rows == nil {
		i.eoj = true
		return database.RecordData{}, errors.New("end of journal")
	}

	if !i.rows.Next() {
		i.eoj = true
		i.rows.Close()
		if err := i.rows.Err(); err != nil {
			return database.RecordData{}, err
		}
		return database.RecordData{}, errors.New("end of journal")
	}

	var data []byte
	if err := i.rows.Scan(&data); err != nil {
		return database.RecordData{}, err
	}

	var record database.RecordData
	if err := json.Unmarshal(data, &record); err != nil {
		return database.RecordData{}, err
	}

	return record, nil
}

// Done returns the end of journal value.
func (i *iterator) Done() bool {
	return i.eoj
}

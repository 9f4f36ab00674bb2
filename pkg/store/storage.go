package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction represents a database transaction with snapshot isolation
type Transaction interface {
	Get(table Table, key []byte) ([]byte, error)
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error

	// Scan iterates over keys with the given prefix (nil scans the table)
	Scan(table Table, prefix []byte) (Iterator, error)

	Commit() error
	Rollback() error
}

// Iterator iterates over key-value pairs in key order
type Iterator interface {
	Next() bool

	// Key returns the current key without the table prefix
	Key() []byte

	Value() ([]byte, error)
	Close() error
}

// Table represents a logical table in the storage
type Table byte

const (
	// Stream records: stream id -> JSON StreamInfo
	TableStreams Table = iota

	// Frames: stream id || sequence -> checksummed frame
	TableFrames

	// Total number of tables
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableStreams:
		return "streams"
	case TableFrames:
		return "frames"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}

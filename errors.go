package bookyard

// errors.go defines the error taxonomy for the record store.

import (
	"errors"

	"github.com/aalhour/rockyardkv/db"
)

// Errors returned by bookyard operations.
var (
	// ErrConfiguration is returned when a store cannot be opened or created:
	// the path does not exist without a creating mode, a declared table is
	// missing, or the engine rejected its options.
	ErrConfiguration = errors.New("bookyard: invalid store configuration")

	// ErrUnknownTable is returned when resolving a table name that was not
	// declared at open time.
	ErrUnknownTable = errors.New("bookyard: unknown table")

	// ErrReadOnly is returned when a write entry point is used on a handle
	// opened in read-only mode. The write capability is fixed at open time.
	ErrReadOnly = errors.New("bookyard: store is opened in read-only mode")

	// ErrTransactionDone is returned when a transaction is used after it has
	// been committed or rolled back. A transaction is consumed exactly once.
	ErrTransactionDone = errors.New("bookyard: transaction already committed or rolled back")

	// ErrUnsupportedShape is returned when a record type is not struct-like.
	// Only structs (including the empty struct as the unit record) can be
	// mapped field-per-key onto a table.
	ErrUnsupportedShape = errors.New("bookyard: record type must be a struct")

	// ErrEncode wraps a field encoding failure. No fields are written when
	// encoding fails.
	ErrEncode = errors.New("bookyard: field encoding failed")

	// ErrDecode wraps a field decoding failure. No partial record is
	// returned when decoding fails.
	ErrDecode = errors.New("bookyard: field decoding failed")
)

// Engine sentinels callers are expected to match on, re-exported so that
// importing the engine package is not required.
var (
	// ErrConflict is returned from Commit when an optimistic transaction's
	// read/write set overlaps a transaction committed since it began. The
	// caller owns the retry policy; bookyard never retries internally.
	ErrConflict = db.ErrTransactionConflict

	// ErrNotFound is the engine's missing-key sentinel. Backend and Txn
	// lookups translate it into a found=false result instead.
	ErrNotFound = db.ErrNotFound
)

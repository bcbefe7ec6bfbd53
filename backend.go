package bookyard

// backend.go unifies the engine's three operating modes behind one handle.
//
// The mode is chosen once at open time and never changes; outside this file
// and transaction construction, no code branches on the active mode.

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/aalhour/rockyardkv/db"
)

// Aliases into the engine's public option surface. Engine options are passed
// through untouched; this layer does not re-model them.
type (
	// Options configures the underlying engine. A nil *Options means
	// DefaultOptions().
	Options = db.Options

	// Table is a handle to a named partition within an open store.
	Table = db.ColumnFamilyHandle

	// MergeOperator combines merge operands with existing values. It is
	// supplied through Options.MergeOperator.
	MergeOperator = db.MergeOperator
)

// DefaultOptions returns the engine's default options.
func DefaultOptions() *Options {
	return db.DefaultOptions()
}

// Reserved tables, always present in every store.
const (
	// ConfigTable holds the configuration record, one key per field.
	ConfigTable = "_config"

	// BooksTable holds the books record, one key per field.
	BooksTable = "_books"
)

// Mode selects how the engine is opened.
type Mode int

const (
	// ModeReadOnly opens the engine without write capability. No transaction
	// can be constructed from a read-only backend.
	ModeReadOnly Mode = iota

	// ModeOptimistic opens the engine with optimistic transactions: conflicts
	// are detected at commit time and surface as ErrConflict.
	ModeOptimistic

	// ModePessimistic opens the engine with lock-based transactions: writes
	// acquire locks at operation time and may block on contention.
	ModePessimistic
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "read-only"
	case ModeOptimistic:
		return "optimistic"
	case ModePessimistic:
		return "pessimistic"
	default:
		return "unknown"
	}
}

// Backend is one open engine instance with its resolved table handles.
// It is safe for concurrent use by multiple callers and is the only
// long-lived shared resource in this package. Close releases it; outstanding
// transactions must not outlive it.
type Backend struct {
	mode    Mode
	base    db.DB
	txnDB   *db.TransactionDB // set in ModePessimistic only
	tables  map[string]Table
	mergeOp db.MergeOperator
	closed  atomic.Bool
}

// reservedTables returns the caller-declared table names with the two
// reserved names appended, deduplicated, in declaration order.
func reservedTables(declared []string) []string {
	names := make([]string, 0, len(declared)+2)
	for _, n := range append(slices.Clone(declared), ConfigTable, BooksTable) {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// openBackend opens or creates the engine at path in the given mode and
// resolves all declared tables plus the reserved ones. In a creating open,
// missing tables are created; otherwise their absence is ErrConfiguration.
func openBackend(path string, declared []string, opts *Options, mode Mode, create bool) (*Backend, error) {
	if opts == nil {
		opts = db.DefaultOptions()
	}
	o := *opts
	o.CreateIfMissing = create && mode != ModeReadOnly

	b := &Backend{mode: mode, mergeOp: o.MergeOperator}

	var err error
	switch mode {
	case ModeReadOnly:
		b.base, err = db.OpenForReadOnly(path, &o, false)
	case ModeOptimistic:
		b.base, err = db.Open(path, &o)
	case ModePessimistic:
		b.txnDB, err = db.OpenTransactionDB(path, &o, db.DefaultTransactionDBOptions())
		if err == nil {
			b.base = b.txnDB.GetDB()
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrConfiguration, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %q (%s): %v", ErrConfiguration, path, mode, err)
	}

	names := reservedTables(declared)
	b.tables = make(map[string]Table, len(names))
	for _, name := range names {
		h := b.base.GetColumnFamily(name)
		if h == nil {
			if !create || mode == ModeReadOnly {
				_ = b.Close()
				return nil, fmt.Errorf("%w: table %q does not exist in %q", ErrConfiguration, name, path)
			}
			h, err = b.base.CreateColumnFamily(db.DefaultColumnFamilyOptions(), name)
			if err != nil {
				_ = b.Close()
				return nil, fmt.Errorf("%w: create table %q: %v", ErrConfiguration, name, err)
			}
		}
		b.tables[name] = h
	}
	return b, nil
}

// Mode returns the mode the backend was opened in.
func (b *Backend) Mode() Mode {
	return b.mode
}

// Writable reports whether the backend can produce transactions.
func (b *Backend) Writable() bool {
	return b.mode != ModeReadOnly
}

// Table resolves a declared table name to its handle.
func (b *Backend) Table(name string) (Table, error) {
	h, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return h, nil
}

// Tables returns the declared table names in sorted order.
func (b *Backend) Tables() []string {
	names := make([]string, 0, len(b.tables))
	for name := range b.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get reads one key directly from the backend. A missing key is reported as
// found=false, not as an error.
func (b *Backend) Get(table Table, key []byte) (value []byte, found bool, err error) {
	v, err := b.base.GetCF(nil, table, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// MultiGet reads several keys directly from the backend. The result has one
// entry per key, in order; missing keys yield nil entries.
func (b *Backend) MultiGet(table Table, keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values := make([][]byte, len(keys))
	for i, key := range keys {
		v, found, err := b.Get(table, key)
		if err != nil {
			return nil, err
		}
		if found {
			values[i] = v
		}
	}
	return values, nil
}

// Put writes one key directly. In pessimistic mode the write runs as a
// single-operation transaction so the engine's lock manager is not bypassed.
func (b *Backend) Put(table Table, key, value []byte) error {
	if b.mode == ModeReadOnly {
		return ErrReadOnly
	}
	if b.mode == ModePessimistic {
		return b.singleOp(func(t *Txn) error { return t.Put(table, key, value) })
	}
	return b.base.PutCF(nil, table, key, value)
}

// Merge applies a merge operand to one key directly. Requires
// Options.MergeOperator to be set.
func (b *Backend) Merge(table Table, key, operand []byte) error {
	if b.mode == ModeReadOnly {
		return ErrReadOnly
	}
	if b.mode == ModePessimistic {
		return b.singleOp(func(t *Txn) error { return t.Merge(table, key, operand) })
	}
	return b.base.MergeCF(nil, table, key, operand)
}

func (b *Backend) singleOp(op func(*Txn) error) error {
	txn, err := b.Begin()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	if err := op(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// Begin starts a new transaction. Read-only backends cannot produce one;
// the capability is fixed at open time and checked here, not per operation.
func (b *Backend) Begin() (*Txn, error) {
	switch b.mode {
	case ModeOptimistic:
		return newTxn(b, b.base.BeginTransaction(db.DefaultTransactionOptions(), nil)), nil
	case ModePessimistic:
		return newTxn(b, b.txnDB.BeginTransaction(db.DefaultPessimisticTransactionOptions(), nil)), nil
	default:
		return nil, fmt.Errorf("%w: transactions require a writable store", ErrReadOnly)
	}
}

// Entry is one owned key/value pair produced by a scan.
type Entry struct {
	Key   []byte
	Value []byte
}

// ScanMode selects a scan's start position and direction. A nil From starts
// at the table boundary for the direction: the first key going forward, the
// last key going backward. A non-nil From starts at the first key at-or-after
// it going forward, or at-or-before it going backward.
type ScanMode struct {
	From    []byte
	Reverse bool
}

// Scan produces a lazy sequence of owned key/value pairs in engine key order.
// Each call yields an independent sequence that can be restarted by ranging
// over it again; the sequence ends early if the engine reports an error, in
// which case the final yield carries that error.
func (b *Backend) Scan(table Table, mode ScanMode) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		it := b.base.NewIteratorCF(nil, table)
		defer it.Close()
		for seekScan(it, mode); it.Valid(); advanceScan(it, mode.Reverse) {
			e := Entry{Key: bytes.Clone(it.Key()), Value: bytes.Clone(it.Value())}
			if !yield(e, nil) {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(Entry{}, err)
		}
	}
}

func seekScan(it db.Iterator, mode ScanMode) {
	switch {
	case mode.From == nil && !mode.Reverse:
		it.SeekToFirst()
	case mode.From == nil:
		it.SeekToLast()
	case !mode.Reverse:
		it.Seek(mode.From)
	default:
		it.SeekForPrev(mode.From)
	}
}

func advanceScan(it db.Iterator, reverse bool) {
	if reverse {
		it.Prev()
	} else {
		it.Next()
	}
}

// Close releases the engine handle. It is idempotent; only the first call
// reaches the engine.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	if b.txnDB != nil {
		return b.txnDB.Close()
	}
	return b.base.Close()
}

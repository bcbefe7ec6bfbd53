package bookyard

// transaction.go wraps the engine's optimistic and pessimistic transactions
// behind one handle type.

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/aalhour/rockyardkv/db"
)

// engineTxn is the method set shared by the engine's optimistic Transaction
// and *PessimisticTransaction.
type engineTxn interface {
	PutCF(cf db.ColumnFamilyHandle, key, value []byte) error
	GetCF(cf db.ColumnFamilyHandle, key []byte) ([]byte, error)
	Commit() error
	Rollback() error
}

// Txn is one transaction against a writable backend. Operations are applied
// in issue order and become visible to other readers atomically at Commit.
// A Txn is exclusively owned by its creator and must not be used from more
// than one goroutine. It is consumed exactly once: by Commit, or by Rollback
// (which a deferred call makes the implicit abort for unfinished
// transactions).
type Txn struct {
	backend *Backend
	inner   engineTxn

	// pending mirrors this transaction's writes per table so Scan can
	// overlay them on the committed state. The engine's own transactions do
	// not expose iteration over their write sets.
	pending map[string]map[string][]byte

	done bool
}

func newTxn(b *Backend, inner engineTxn) *Txn {
	return &Txn{
		backend: b,
		inner:   inner,
		pending: make(map[string]map[string][]byte),
	}
}

// Get reads one key with the transaction's isolation semantics: the
// transaction's own pending writes are visible, then the snapshot the engine
// gave the transaction. A missing key is found=false, not an error.
func (t *Txn) Get(table Table, key []byte) (value []byte, found bool, err error) {
	if t.done {
		return nil, false, ErrTransactionDone
	}
	v, err := t.inner.GetCF(table, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// MultiGet reads several keys within the transaction. Missing keys yield nil
// entries.
func (t *Txn) MultiGet(table Table, keys [][]byte) ([][]byte, error) {
	if t.done {
		return nil, ErrTransactionDone
	}
	if len(keys) == 0 {
		return nil, nil
	}
	values := make([][]byte, len(keys))
	for i, key := range keys {
		v, found, err := t.Get(table, key)
		if err != nil {
			return nil, err
		}
		if found {
			values[i] = v
		}
	}
	return values, nil
}

// Put queues a write. In pessimistic mode this acquires the key's lock and
// may block on contention.
func (t *Txn) Put(table Table, key, value []byte) error {
	if t.done {
		return ErrTransactionDone
	}
	if err := t.inner.PutCF(table, key, value); err != nil {
		return err
	}
	t.record(table, key, value)
	return nil
}

// Merge applies a merge operand within the transaction as a read-merge-write:
// the current value is read with the transaction's isolation (tracking the
// key for conflict detection, or locking it), combined with the operand by
// Options.MergeOperator, and written back.
func (t *Txn) Merge(table Table, key, operand []byte) error {
	if t.done {
		return ErrTransactionDone
	}
	op := t.backend.mergeOp
	if op == nil {
		return db.ErrMergeOperatorNotSet
	}
	existing, err := t.inner.GetCF(table, key)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	merged, ok := op.FullMerge(key, existing, [][]byte{operand})
	if !ok {
		return fmt.Errorf("bookyard: merge operator %q rejected key %q", op.Name(), key)
	}
	return t.Put(table, key, merged)
}

func (t *Txn) record(table Table, key, value []byte) {
	m := t.pending[table.Name()]
	if m == nil {
		m = make(map[string][]byte)
		t.pending[table.Name()] = m
	}
	m[string(key)] = bytes.Clone(value)
}

// Scan produces the transaction's view of a table: the committed state with
// this transaction's pending writes overlaid, in engine key order.
func (t *Txn) Scan(table Table, mode ScanMode) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if t.done {
			yield(Entry{}, ErrTransactionDone)
			return
		}
		overlay := t.sortedPending(table.Name(), mode)
		it := t.backend.base.NewIteratorCF(nil, table)
		defer it.Close()
		seekScan(it, mode)

		i := 0
		for it.Valid() || i < len(overlay) {
			var e Entry
			switch {
			case i >= len(overlay):
				e = Entry{Key: bytes.Clone(it.Key()), Value: bytes.Clone(it.Value())}
				advanceScan(it, mode.Reverse)
			case !it.Valid():
				e = overlay[i]
				i++
			default:
				c := bytes.Compare(it.Key(), overlay[i].Key)
				if mode.Reverse {
					c = -c
				}
				switch {
				case c < 0:
					e = Entry{Key: bytes.Clone(it.Key()), Value: bytes.Clone(it.Value())}
					advanceScan(it, mode.Reverse)
				case c > 0:
					e = overlay[i]
					i++
				default:
					// Pending write shadows the committed value.
					e = overlay[i]
					i++
					advanceScan(it, mode.Reverse)
				}
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(Entry{}, err)
		}
	}
}

// sortedPending snapshots the pending writes for one table, bounded and
// ordered per the scan mode.
func (t *Txn) sortedPending(table string, mode ScanMode) []Entry {
	m := t.pending[table]
	if len(m) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(m))
	for k, v := range m {
		key := []byte(k)
		if mode.From != nil {
			c := bytes.Compare(key, mode.From)
			if (!mode.Reverse && c < 0) || (mode.Reverse && c > 0) {
				continue
			}
		}
		entries = append(entries, Entry{Key: key, Value: bytes.Clone(v)})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return bytes.Compare(a.Key, b.Key) })
	if mode.Reverse {
		slices.Reverse(entries)
	}
	return entries
}

// Commit validates and applies the transaction, consuming the handle. Under
// optimistic concurrency it fails with ErrConflict if another transaction
// committed an overlapping read/write set since this one began; the caller
// owns any retry.
func (t *Txn) Commit() error {
	if t.done {
		return ErrTransactionDone
	}
	t.done = true
	if err := t.inner.Commit(); err != nil {
		return fmt.Errorf("bookyard: commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. It is a no-op after the transaction has
// completed, so it can be deferred unconditionally.
func (t *Txn) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.inner.Rollback()
}

package bookyard

// admin.go implements maintenance operations over all known tables. These
// run outside the record read/write hot path and carry no atomicity
// guarantee with respect to concurrent record operations.

import (
	"fmt"

	"github.com/aalhour/rockyardkv/db"
)

// Admin is a maintenance handle over an existing store. It opens the engine
// plainly (writable, non-transactional) and remembers the known table names.
type Admin struct {
	engine db.DB
	tables []string
}

// OpenAdmin opens a maintenance handle on the store at path. The declared
// tables plus the reserved ones form the set of known tables; unlike the
// store entry points, tables that do not exist yet are not an error here.
func OpenAdmin(path string, tables []string, opts *Options) (*Admin, error) {
	if opts == nil {
		opts = db.DefaultOptions()
	}
	o := *opts
	engine, err := db.Open(path, &o)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q for admin: %v", ErrConfiguration, path, err)
	}
	return &Admin{engine: engine, tables: reservedTables(tables)}, nil
}

// Flush walks the known table names and requests an engine flush for each
// one that exists, tolerating tables that do not exist yet. The engine
// flushes at the database level; it exposes no per-table flush.
func (a *Admin) Flush() error {
	for _, name := range a.tables {
		if a.engine.GetColumnFamily(name) == nil {
			continue
		}
		if err := a.engine.Flush(db.DefaultFlushOptions()); err != nil {
			return fmt.Errorf("bookyard: flush %q: %w", name, err)
		}
	}
	return nil
}

// Compact requests a full-range compaction with level promotion enabled and
// blocks until the engine reports compaction complete.
func (a *Admin) Compact() error {
	opts := &db.CompactRangeOptions{ChangeLevel: true}
	if err := a.engine.CompactRange(opts, nil, nil); err != nil {
		return fmt.Errorf("bookyard: compact: %w", err)
	}
	if err := a.engine.WaitForCompact(&db.WaitForCompactOptions{}); err != nil {
		return fmt.Errorf("bookyard: wait for compact: %w", err)
	}
	return nil
}

// Tables returns the known table names.
func (a *Admin) Tables() []string {
	return a.tables
}

// Close releases the maintenance handle.
func (a *Admin) Close() error {
	return a.engine.Close()
}

package bookyard

// store.go exposes the record-store lifecycle: create and open entry points,
// cached open-time snapshots, and the read/write operations for the two
// reserved records.

// Store is a read-only handle to a record store: the open engine instance
// plus in-memory copies of the configuration and books records captured at
// open time. The cached copies are snapshots; they are not refreshed by
// later writes, so callers observe changes by re-reading.
//
// A Store is safe for concurrent use. It exposes no write entry points; the
// write capability is a property of the handle type, fixed at open time.
type Store[C, B any] struct {
	backend      *Backend
	configSchema *Schema[C]
	booksSchema  *Schema[B]
	config       C
	books        B
}

// WritableStore is a writable handle to a record store. It adds the write
// entry points to everything a Store can do.
type WritableStore[C, B any] struct {
	Store[C, B]
}

// Create creates the store at path with the declared extra tables alongside
// the reserved ones, writes the initial configuration and books records as
// two independent transactions, and returns a writable handle with both
// values cached. The transaction discipline is optimistic or pessimistic per
// the flag, fixed for the handle's lifetime.
func Create[C, B any](
	path string,
	tables []string,
	opts *Options,
	optimisticTxns bool,
	configSchema *Schema[C],
	booksSchema *Schema[B],
	config C,
	books B,
) (*WritableStore[C, B], error) {
	mode := ModePessimistic
	if optimisticTxns {
		mode = ModeOptimistic
	}
	backend, err := openBackend(path, tables, opts, mode, true)
	if err != nil {
		return nil, err
	}
	s := &WritableStore[C, B]{Store[C, B]{
		backend:      backend,
		configSchema: configSchema,
		booksSchema:  booksSchema,
		config:       config,
		books:        books,
	}}
	if err := s.WriteConfig(config); err != nil {
		_ = backend.Close()
		return nil, err
	}
	if err := s.WriteBooks(books); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing store read-only and caches both records. Missing
// path or tables fail with ErrConfiguration; no table is created or mutated
// by a read-only open.
func Open[C, B any](
	path string,
	tables []string,
	opts *Options,
	configSchema *Schema[C],
	booksSchema *Schema[B],
) (*Store[C, B], error) {
	return openStore(path, tables, opts, ModeReadOnly, configSchema, booksSchema)
}

// OpenWritable opens an existing store writable with optimistic
// transactions and caches both records.
func OpenWritable[C, B any](
	path string,
	tables []string,
	opts *Options,
	configSchema *Schema[C],
	booksSchema *Schema[B],
) (*WritableStore[C, B], error) {
	s, err := openStore(path, tables, opts, ModeOptimistic, configSchema, booksSchema)
	if err != nil {
		return nil, err
	}
	return &WritableStore[C, B]{*s}, nil
}

// OpenWithPessimisticTransactions is OpenWritable with lock-based
// transactions instead of optimistic ones.
func OpenWithPessimisticTransactions[C, B any](
	path string,
	tables []string,
	opts *Options,
	configSchema *Schema[C],
	booksSchema *Schema[B],
) (*WritableStore[C, B], error) {
	s, err := openStore(path, tables, opts, ModePessimistic, configSchema, booksSchema)
	if err != nil {
		return nil, err
	}
	return &WritableStore[C, B]{*s}, nil
}

func openStore[C, B any](
	path string,
	tables []string,
	opts *Options,
	mode Mode,
	configSchema *Schema[C],
	booksSchema *Schema[B],
) (*Store[C, B], error) {
	backend, err := openBackend(path, tables, opts, mode, false)
	if err != nil {
		return nil, err
	}
	s := &Store[C, B]{
		backend:      backend,
		configSchema: configSchema,
		booksSchema:  booksSchema,
	}
	if s.config, err = s.ReadConfig(); err != nil {
		_ = backend.Close()
		return nil, err
	}
	if s.books, err = s.ReadBooks(); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}

// Config returns the configuration record cached at open or create time.
func (s *Store[C, B]) Config() C {
	return s.config
}

// Books returns the books record cached at open or create time.
func (s *Store[C, B]) Books() B {
	return s.books
}

// ReadConfig re-reads the persisted configuration record. The cached copy is
// not updated.
func (s *Store[C, B]) ReadConfig() (C, error) {
	table, err := s.backend.Table(ConfigTable)
	if err != nil {
		var zero C
		return zero, err
	}
	return readRecord(s.backend, table, s.configSchema)
}

// ReadBooks re-reads the persisted books record. The cached copy is not
// updated.
func (s *Store[C, B]) ReadBooks() (B, error) {
	table, err := s.backend.Table(BooksTable)
	if err != nil {
		var zero B
		return zero, err
	}
	return readRecord(s.backend, table, s.booksSchema)
}

// Backend returns the store's backend for direct table access: point reads,
// scans, and, on writable handles, transactions against caller-declared
// tables. The backend carries the handle's capability, so a read-only
// store's backend rejects writes.
func (s *Store[C, B]) Backend() *Backend {
	return s.backend
}

// Close releases the store's engine handle. Outstanding transactions must
// not outlive it.
func (s *Store[C, B]) Close() error {
	return s.backend.Close()
}

// WriteConfig re-serializes config as a new, independent transaction: every
// field of the record becomes visible atomically at commit, and the books
// record is untouched. The handle's cached copy is not updated.
func (s *WritableStore[C, B]) WriteConfig(config C) error {
	table, err := s.backend.Table(ConfigTable)
	if err != nil {
		return err
	}
	return writeRecord(s.backend, table, s.configSchema, &config)
}

// WriteBooks re-serializes books as a new, independent transaction. The
// handle's cached copy is not updated.
func (s *WritableStore[C, B]) WriteBooks(books B) error {
	table, err := s.backend.Table(BooksTable)
	if err != nil {
		return err
	}
	return writeRecord(s.backend, table, s.booksSchema, &books)
}

/*
Package bookyard is a typed persistence layer over RockyardKV. It stores
aggregate records — a configuration record and a books record, or any
schema-described struct type — one field per key inside a dedicated table of
the engine, with atomic multi-field writes.

A record type is described by a Schema: an ordered list of field names with
encode and decode functions built on the codec subpackage. Writing a record
serializes every field into one transaction, so all fields become visible
atomically at commit; reading a record performs one point lookup per field,
decoding a one-byte absent sentinel when a field's key is not stored. A
schema can therefore grow new fields, and a freshly created store can be
read before anything was ever written to it.

# Usage

Define schemas and create a store:

	type Config struct {
		CaseSensitive bool
	}

	configSchema := bookyard.MustSchema[Config](
		bookyard.Field[Config]{
			Name: "case_sensitive",
			Encode: func(c *Config) ([]byte, error) {
				return codec.AppendBool(nil, c.CaseSensitive), nil
			},
			Decode: func(c *Config, data []byte) error {
				v, err := codec.Decode(data, (*codec.Reader).Bool)
				c.CaseSensitive = v
				return err
			},
		},
	)

	store, err := bookyard.Create(path, nil, nil, true,
		configSchema, booksSchema, initialConfig, initialBooks)

Reopen it later, read-only or writable:

	ro, err := bookyard.Open(path, nil, nil, configSchema, booksSchema)
	rw, err := bookyard.OpenWritable(path, nil, nil, configSchema, booksSchema)

# Operating Modes

A store handle is opened in one of three engine modes, fixed for its
lifetime: read-only, optimistic-transactional, or pessimistic-transactional.
Optimistic commits fail with ErrConflict when a concurrent writer touched the
same keys; the caller owns the retry. Pessimistic operations lock keys as
they go and may block instead. A read-only handle has no write entry points
at all: writes live on WritableStore, not Store.

# Concurrency

A Store is safe for concurrent use by multiple goroutines. Individual Txn
instances are not; each logical flow of control should use its own
transaction and finish it with Commit or Rollback.
*/
package bookyard

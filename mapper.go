package bookyard

// mapper.go is the bridge between a record value and the per-field keys of
// one table: a write serializes every field into one transaction, a read
// reassembles the record from per-field point lookups.

import "fmt"

// absentValue is decoded in place of a field whose key is not stored. It is
// the canonical empty encoding for every field type the codec supports with
// a natural default: zero, false, the empty string, an absent option, the
// first enum variant. Field types without such a decoding (bare floats)
// violate the field's type contract when absent, not the mapper's.
var absentValue = []byte{0x00}

// writeRecord persists record into table, one key per schema field, inside a
// single transaction. Commit is the sole point of atomicity: either every
// field write for the record takes effect or none does. An encoding failure
// aborts before anything is queued for that field.
func writeRecord[R any](b *Backend, table Table, schema *Schema[R], record *R) error {
	txn, err := b.Begin()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	for i := range schema.fields {
		f := &schema.fields[i]
		data, err := f.Encode(record)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrEncode, f.Name, err)
		}
		if err := txn.Put(table, []byte(f.Name), data); err != nil {
			return err
		}
	}
	return txn.Commit()
}

// readRecord reads a record from table, one point lookup per schema field in
// schema order. A missing key decodes the absent sentinel instead, so a
// record can be read from a fresh table and a schema can grow new fields. A
// decoding failure aborts the whole read; no partial record escapes.
func readRecord[R any](b *Backend, table Table, schema *Schema[R]) (R, error) {
	var record R
	for i := range schema.fields {
		f := &schema.fields[i]
		data, found, err := b.Get(table, []byte(f.Name))
		if err != nil {
			return record, err
		}
		if !found {
			data = absentValue
		}
		if err := f.Decode(&record, data); err != nil {
			var zero R
			return zero, fmt.Errorf("%w: field %q: %v", ErrDecode, f.Name, err)
		}
	}
	return record, nil
}

package bookyard

// schema.go defines the schema descriptor consumed by the record mapper: an
// ordered list of field names with their encode and decode functions. The
// descriptor replaces language-level reflection as the way a record type's
// fields are enumerated; only the top-level shape is checked reflectively.

import (
	"fmt"
	"reflect"
	"slices"
)

// Field describes one named field of a record type R: how to encode its
// current value out of a record, and how to decode stored bytes back into
// one. The field name doubles as the storage key, so names must be unique
// within a schema and stable across releases.
type Field[R any] struct {
	Name   string
	Encode func(record *R) ([]byte, error)
	Decode func(record *R, data []byte) error
}

// Schema is the ordered field descriptor for a record type. The field order
// is fixed at construction and used identically by writes and reads.
type Schema[R any] struct {
	fields []Field[R]
}

// NewSchema builds a schema for R. R must be a struct type; the empty struct
// is the unit record with zero fields. Primitives, slices, and maps are not
// valid top-level record shapes and fail with ErrUnsupportedShape.
func NewSchema[R any](fields ...Field[R]) (*Schema[R], error) {
	t := reflect.TypeFor[R]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is a %s", ErrUnsupportedShape, t, t.Kind())
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("bookyard: schema for %s has a field with an empty name", t)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("bookyard: schema for %s has duplicate field %q", t, f.Name)
		}
		if f.Encode == nil || f.Decode == nil {
			return nil, fmt.Errorf("bookyard: schema field %q needs both encode and decode functions", f.Name)
		}
		seen[f.Name] = true
	}
	return &Schema[R]{fields: slices.Clone(fields)}, nil
}

// MustSchema is like NewSchema but panics on error. Intended for
// package-level schema registration.
func MustSchema[R any](fields ...Field[R]) *Schema[R] {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// FieldNames returns the schema's field names in storage order.
func (s *Schema[R]) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

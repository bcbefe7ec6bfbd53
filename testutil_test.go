package bookyard

// testutil_test.go - shared record types, schemas, and store fixtures used
// across the package tests.

import (
	"testing"

	"github.com/aalhour/bookyard/codec"
)

// hashKinds plays the role of an enum-valued configuration field.
type hashKinds uint32

const (
	hashBoth hashKinds = iota
	hashMd5Only
	hashSha256Only
)

type testConfig struct {
	Hashes        hashKinds
	CaseSensitive bool
}

type testBooks struct {
	LastScrapeMs uint64
	Region       string
}

var testConfigSchema = MustSchema(
	Field[testConfig]{
		Name: "hashes",
		Encode: func(c *testConfig) ([]byte, error) {
			return codec.AppendUint32(nil, uint32(c.Hashes)), nil
		},
		Decode: func(c *testConfig, data []byte) error {
			v, err := codec.Decode(data, (*codec.Reader).Uint32)
			c.Hashes = hashKinds(v)
			return err
		},
	},
	Field[testConfig]{
		Name: "case_sensitive",
		Encode: func(c *testConfig) ([]byte, error) {
			return codec.AppendBool(nil, c.CaseSensitive), nil
		},
		Decode: func(c *testConfig, data []byte) error {
			v, err := codec.Decode(data, (*codec.Reader).Bool)
			c.CaseSensitive = v
			return err
		},
	},
)

var testBooksSchema = MustSchema(
	Field[testBooks]{
		Name: "last_scrape_ms",
		Encode: func(b *testBooks) ([]byte, error) {
			return codec.AppendUint64(nil, b.LastScrapeMs), nil
		},
		Decode: func(b *testBooks, data []byte) error {
			v, err := codec.Decode(data, (*codec.Reader).Uint64)
			b.LastScrapeMs = v
			return err
		},
	},
	Field[testBooks]{
		Name: "region",
		Encode: func(b *testBooks) ([]byte, error) {
			return codec.AppendString(nil, b.Region), nil
		},
		Decode: func(b *testBooks, data []byte) error {
			v, err := codec.Decode(data, (*codec.Reader).String)
			b.Region = v
			return err
		},
	},
)

var (
	initialConfig = testConfig{Hashes: hashMd5Only, CaseSensitive: true}
	initialBooks  = testBooks{LastScrapeMs: 1724650000000, Region: "eu-west"}
)

// createTestStore creates a fresh store with the shared schemas and initial
// records. The caller owns Close.
func createTestStore(t *testing.T, optimistic bool) (*WritableStore[testConfig, testBooks], string) {
	t.Helper()
	return createTestStoreTables(t, nil, optimistic)
}

// createTestStoreTables is createTestStore with extra declared tables.
func createTestStoreTables(t *testing.T, tables []string, optimistic bool) (*WritableStore[testConfig, testBooks], string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Create(dir, tables, nil, optimistic,
		testConfigSchema, testBooksSchema, initialConfig, initialBooks)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return s, dir
}

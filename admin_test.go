package bookyard

// admin_test.go - maintenance handle: flush, compaction, and tolerance of
// tables that do not exist yet.

import (
	"slices"
	"testing"
)

func TestAdminFlushAndCompact(t *testing.T) {
	s, dir := createTestStoreTables(t, []string{"records"}, true)
	b := s.Backend()
	table, _ := b.Table("records")
	for _, k := range []string{"a", "b", "c"} {
		if err := b.Put(table, []byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Put(%q) error = %v", k, err)
		}
	}
	s.Close()

	a, err := OpenAdmin(dir, []string{"records"}, nil)
	if err != nil {
		t.Fatalf("OpenAdmin() error = %v", err)
	}
	defer a.Close()

	if err := a.Flush(); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	if err := a.Compact(); err != nil {
		t.Errorf("Compact() error = %v", err)
	}
}

// TestAdminToleratesMissingTables tests that maintenance over a declared but
// never-created table skips it instead of failing.
func TestAdminToleratesMissingTables(t *testing.T) {
	s, dir := createTestStore(t, true)
	s.Close()

	a, err := OpenAdmin(dir, []string{"ghost"}, nil)
	if err != nil {
		t.Fatalf("OpenAdmin() error = %v", err)
	}
	defer a.Close()

	if err := a.Flush(); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
}

func TestAdminTables(t *testing.T) {
	s, dir := createTestStoreTables(t, []string{"records"}, true)
	s.Close()

	a, err := OpenAdmin(dir, []string{"records"}, nil)
	if err != nil {
		t.Fatalf("OpenAdmin() error = %v", err)
	}
	defer a.Close()

	names := a.Tables()
	for _, want := range []string{"records", ConfigTable, BooksTable} {
		if !slices.Contains(names, want) {
			t.Errorf("Tables() = %v, missing %q", names, want)
		}
	}
}

// TestAdminOpenMissingStore tests that the maintenance handle does not create
// a store that is not there.
func TestAdminOpenMissingStore(t *testing.T) {
	if _, err := OpenAdmin(t.TempDir(), nil, nil); err == nil {
		t.Error("OpenAdmin() succeeded on an empty directory")
	}
}

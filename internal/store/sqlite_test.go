package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sheetfold-test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestStoreItemRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetItem("accordion_viewed_sheet-1", `{"a":1}`); err != nil {
		t.Fatalf("SetItem first: %v", err)
	}
	if err := s.SetItem("accordion_viewed_sheet-1", `{"a":2}`); err != nil {
		t.Fatalf("SetItem second: %v", err)
	}
	v, found, err := s.GetItem("accordion_viewed_sheet-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !found || v != `{"a":2}` {
		t.Fatalf("unexpected item found=%v value=%q", found, v)
	}
	_, found, err = s.GetItem("missing")
	if err != nil {
		t.Fatalf("GetItem missing: %v", err)
	}
	if found {
		t.Fatalf("missing key should not be found")
	}

	if err := s.RemoveItem("accordion_viewed_sheet-1"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, found, _ := s.GetItem("accordion_viewed_sheet-1"); found {
		t.Fatalf("removed key should not be found")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestStoreListItemsByPrefix(t *testing.T) {
	s := openTestStore(t)
	for _, key := range []string{"accordion_viewed_b", "other", "accordion_viewed_a"} {
		if err := s.SetItem(key, "{}"); err != nil {
			t.Fatalf("SetItem %q: %v", key, err)
		}
	}
	items, err := s.ListItems("accordion_viewed_")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 || items[0].Key != "accordion_viewed_a" || items[1].Key != "accordion_viewed_b" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].SizeBytes != 2 || items[0].UpdatedUTC.IsZero() {
		t.Fatalf("unexpected metadata: %+v", items[0])
	}
	all, err := s.ListItems("")
	if err != nil {
		t.Fatalf("ListItems all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d items want 3", len(all))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	_ = s.Close()

	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v, found, err := s.GetItem("k"); err != nil || !found || v != "v" {
		t.Fatalf("after reopen: got %q found=%v err=%v", v, found, err)
	}
}

func TestMigrateCreatesStorageColumns(t *testing.T) {
	s := openTestStore(t)
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('storage') ORDER BY cid`)
	if err != nil {
		t.Fatalf("table info: %v", err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := []string{"key", "value", "size_bytes", "updated_utc"}
	if strings.Join(cols, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", cols, want)
	}
}

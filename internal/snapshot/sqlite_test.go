package snapshot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	raw, err := s.Load(ctx, KeyContracts)
	if err != nil || raw != nil {
		t.Fatalf("absent key: raw=%q err=%v", raw, err)
	}

	if err := s.Save(ctx, KeyContracts, []byte(`[{"id":"contract_1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err = s.Load(ctx, KeyContracts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(raw) != `[{"id":"contract_1"}]` {
		t.Fatalf("loaded %q", raw)
	}

	// Saving the same key replaces the row.
	if err := s.Save(ctx, KeyContracts, []byte(`[]`)); err != nil {
		t.Fatalf("resave: %v", err)
	}
	raw, _ = s.Load(ctx, KeyContracts)
	if string(raw) != `[]` {
		t.Fatalf("after upsert: %q", raw)
	}

	if err := s.Delete(ctx, KeyContracts); err != nil {
		t.Fatalf("delete: %v", err)
	}
	raw, err = s.Load(ctx, KeyContracts)
	if err != nil || raw != nil {
		t.Fatalf("after delete: raw=%q err=%v", raw, err)
	}
}

func TestSQLiteJournalMode(t *testing.T) {
	s := openTestDB(t)
	var mode string
	if err := s.conn.Get(&mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal_mode %q, want wal", mode)
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Save(ctx, KeyPlayer, []byte(`{"name":"Asha"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	raw, err := second.Load(ctx, KeyPlayer)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(raw) != `{"name":"Asha"}` {
		t.Fatalf("reloaded %q", raw)
	}
}

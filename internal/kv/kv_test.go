package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	fileStore, err := OpenFile(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqliteStore, err := OpenSQLite(filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	stores := map[string]Store{
		BackendFile:   fileStore,
		BackendSQLite: sqliteStore,
	}
	t.Cleanup(func() {
		for _, st := range stores {
			_ = st.Close()
		}
	})
	return stores
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		if _, err := st.Get(ctx, KeyQuizHistory); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound for missing key, got %v", name, err)
		}
		value := []byte(`[{"id":"1"}]`)
		if err := st.Set(ctx, KeyQuizHistory, value); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		got, err := st.Get(ctx, KeyQuizHistory)
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if string(got) != string(value) {
			t.Errorf("%s: got %q, want %q", name, got, value)
		}
	}
}

func TestOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		if err := st.Set(ctx, KeyLeaderboard, []byte(`[]`)); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		if err := st.Set(ctx, KeyLeaderboard, []byte(`[{"username":"ayse"}]`)); err != nil {
			t.Fatalf("%s: overwrite: %v", name, err)
		}
		got, err := st.Get(ctx, KeyLeaderboard)
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if !strings.Contains(string(got), "ayse") {
			t.Errorf("%s: overwrite not visible: %q", name, got)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		if err := st.Delete(ctx, KeyIdentity); err != nil {
			t.Errorf("%s: deleting a missing key should not fail: %v", name, err)
		}
		if err := st.Set(ctx, KeyIdentity, []byte(`{"username":"ayse"}`)); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		if err := st.Delete(ctx, KeyIdentity); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if _, err := st.Get(ctx, KeyIdentity); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound after delete, got %v", name, err)
		}
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := st.Set(ctx, KeyQuizHistory, []byte(`[]`)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if err := st.Set(ctx, KeyQuizHistory, []byte(`["x"]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	got, err := st.Get(ctx, KeyQuizHistory)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `["x"]` {
		t.Fatalf("unexpected value after reopen: %q", got)
	}
}

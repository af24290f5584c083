package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)
	in := []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	if err := s.Save("items", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out []record
	if err := s.Load("items", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].Name != "a" || out[1].Count != 2 {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}
}

func TestLoadMissingKey(t *testing.T) {
	s := newTestStore(t)
	var out []record
	if err := s.Load("nope", &out); err != ErrNoKey {
		t.Fatalf("Load(missing) = %v, want ErrNoKey", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("k", record{Name: "old"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("k", record{Name: "new"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var out record
	if err := s.Load("k", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != "new" {
		t.Fatalf("Load after overwrite = %+v", out)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("k", record{Name: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var out record
	if err := s.Load("k", &out); err != ErrNoKey {
		t.Fatalf("Load after delete = %v, want ErrNoKey", err)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Save("k", record{Name: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}

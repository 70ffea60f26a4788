package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")

	s := NewStore(path)
	s.Put("sweep", []string{"for v 1 2 3", "psu set 1 ${v} 0.5", "end"})
	s.Put("idle", []string{"all off"})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewStore(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.Get("sweep")
	if !ok {
		t.Fatal("sweep missing after reload")
	}
	want := []string{"for v 1 2 3", "psu set 1 ${v} 0.5", "end"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sweep mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"idle", "sweep"}, loaded.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")
	s := NewStore(path)
	s.Put("b", []string{"cmd"})
	s.Put("a", []string{"cmd"})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	// Indented JSON with keys in sorted order, so diffs stay stable.
	if !strings.Contains(text, "\n  \"a\"") {
		t.Errorf("output not indented:\n%s", text)
	}
	if strings.Index(text, `"a"`) > strings.Index(text, `"b"`) {
		t.Errorf("keys not sorted:\n%s", text)
	}
}

func TestStoreMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if err := s.Load(); err == nil {
		t.Error("expected error loading corrupt JSON")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore("")
	s.Put("x", []string{"cmd"})
	if !s.Delete("x") {
		t.Error("Delete(x) = false, want true")
	}
	if s.Delete("x") {
		t.Error("second Delete(x) = true, want false")
	}
}

func TestStoreImportText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ramp.txt")
	if err := os.WriteFile(src, []byte("set v 1\npsu set 1 ${v} 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore("")
	n, err := s.ImportText("ramp", src)
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d lines, want 2", n)
	}
	got, _ := s.Get("ramp")
	want := []string{"set v 1", "psu set 1 ${v} 0.5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("imported lines mismatch (-want +got):\n%s", diff)
	}
}

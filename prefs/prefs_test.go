package prefs

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

type record struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func newFile(t *testing.T) *File {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "prefs.json"))
}

func TestFileMissingKey(t *testing.T) {
	f := newFile(t)
	var v []record
	ok, err := f.Get("hotkeyBindings", &v)
	if err != nil || ok {
		t.Fatalf("Get on missing file = %v, %v; want false, nil", ok, err)
	}
}

func TestFileSetGet(t *testing.T) {
	f := newFile(t)
	want := []record{{"a", 1}, {"b", 2}}
	if err := f.Set("hotkeyBindings", want); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("other", 7); err != nil {
		t.Fatal(err)
	}

	var got []record
	ok, err := f.Get("hotkeyBindings", &got)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// reopening reads the same document
	var n int
	if ok, err := Open(f.Path()).Get("other", &n); !ok || err != nil || n != 7 {
		t.Errorf("reopened Get(other) = %d, %v, %v", n, ok, err)
	}

	keys, err := f.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []string{"hotkeyBindings", "other"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestFileReplacesWholesale(t *testing.T) {
	f := newFile(t)
	f.Set("k", []record{{"a", 1}, {"b", 2}, {"c", 3}})
	f.Set("k", []record{{"z", 9}})

	var got []record
	f.Get("k", &got)
	if len(got) != 1 || got[0].Name != "z" {
		t.Errorf("got %v, want [{z 9}]", got)
	}
}

func TestFileKeyWithDots(t *testing.T) {
	f := newFile(t)
	if err := f.Set("grid.2x2", "x"); err != nil {
		t.Fatal(err)
	}
	var s string
	if ok, err := f.Get("grid.2x2", &s); !ok || err != nil || s != "x" {
		t.Fatalf("Get(grid.2x2) = %q, %v, %v", s, ok, err)
	}
	keys, _ := f.Keys()
	if !slices.Equal(keys, []string{"grid.2x2"}) {
		t.Errorf("dotted key was nested: %v", keys)
	}
}

func TestFileDecodeError(t *testing.T) {
	f := newFile(t)
	f.Set("k", "not a list")

	var got []record
	ok, err := f.Get("k", &got)
	if !ok || err == nil {
		t.Errorf("Get = %v, %v; want true and a decode error", ok, err)
	}
}

func TestFileCorruptDocumentStartsFresh(t *testing.T) {
	f := newFile(t)
	if err := os.WriteFile(f.Path(), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("k", 1); err != nil {
		t.Fatal(err)
	}
	var n int
	if ok, err := f.Get("k", &n); !ok || err != nil || n != 1 {
		t.Errorf("Get after recovery = %d, %v, %v", n, ok, err)
	}
}

func TestFileDelete(t *testing.T) {
	f := newFile(t)
	f.Set("a", 1)
	f.Set("b", 2)
	if err := f.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete("missing"); err != nil {
		t.Fatal(err)
	}
	keys, _ := f.Keys()
	if !slices.Equal(keys, []string{"b"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestChangedExternally(t *testing.T) {
	f := newFile(t)
	f.Set("a", 1)
	if f.ChangedExternally() {
		t.Error("own write reported as external")
	}
	if err := os.WriteFile(f.Path(), []byte(`{"a": 2}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if !f.ChangedExternally() {
		t.Error("external write not detected")
	}
}

func TestWatchReportsExternalWrite(t *testing.T) {
	f := newFile(t)
	f.Set("a", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 8)
	if err := f.Watch(ctx, func() { changed <- struct{}{} }); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(f.Path(), []byte(`{"a": 3}`), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	var n int
	if ok, _ := m.Get("k", &n); ok {
		t.Error("empty store reported a value")
	}
	m.Set("k", 5)
	if ok, err := m.Get("k", &n); !ok || err != nil || n != 5 {
		t.Errorf("Get = %d, %v, %v", n, ok, err)
	}

	m.SetRaw("k", []byte("{garbage"))
	if _, err := m.Get("k", &n); err == nil {
		t.Error("expected decode error for raw garbage")
	}

	m.Delete("k")
	if _, ok := m.Raw("k"); ok {
		t.Error("Delete left the key")
	}
}

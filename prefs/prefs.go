// Package prefs is a small key-value preference store. Values are JSON
// encoded; the file-backed store keeps every key in one JSON document.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"gridkey/internal/atomicfile"
	"gridkey/log"
)

// Store reads and writes JSON-encodable values by key.
type Store interface {
	// Get decodes the value stored under key into v. It reports false when
	// the key is absent; a present but undecodable value is an error.
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Delete(key string) error
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gridkey", "prefs.json"), nil
}

// File stores preferences in a single JSON document on disk.
type File struct {
	path string

	mu   sync.Mutex
	last []byte // last document written by this process
}

func Open(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) Get(key string, v any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return false, err
	}
	res := gjson.GetBytes(data, escape(key))
	if !res.Exists() {
		return false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		return true, fmt.Errorf("prefs: decode %q: %w", key, err)
	}
	return true, nil
}

func (f *File) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("prefs: encode %q: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.document()
	if err != nil {
		return err
	}
	out, err := sjson.SetRawBytes(data, escape(key), raw)
	if err != nil {
		return fmt.Errorf("prefs: set %q: %w", key, err)
	}
	return f.write(out)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.document()
	if err != nil {
		return err
	}
	if !gjson.GetBytes(data, escape(key)).Exists() {
		return nil
	}
	out, err := sjson.DeleteBytes(data, escape(key))
	if err != nil {
		return fmt.Errorf("prefs: delete %q: %w", key, err)
	}
	return f.write(out)
}

// Keys lists the top-level keys in sorted order.
func (f *File) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil || len(data) == 0 || !gjson.ValidBytes(data) {
		return nil, err
	}
	var keys []string
	gjson.ParseBytes(data).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// ChangedExternally reports whether the file on disk differs from what this
// process last wrote.
func (f *File) ChangedExternally() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return false
	}
	return !bytes.Equal(data, f.last)
}

func (f *File) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: read %s: %w", f.path, err)
	}
	return data, nil
}

// document returns the current document, starting over when the file is
// missing or not valid JSON.
func (f *File) document() ([]byte, error) {
	data, err := f.read()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		log.Warnf("prefs: %s is not a JSON object, starting fresh", f.path)
		return []byte("{}"), nil
	}
	return data, nil
}

func (f *File) write(data []byte) error {
	data = pretty.Pretty(data)
	if err := atomicfile.Write(f.path, data, 0o600); err != nil {
		return fmt.Errorf("prefs: save %s: %w", f.path, err)
	}
	f.last = data
	return nil
}

// escape quotes gjson/sjson path metacharacters so a key is always read as
// a single top-level field.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Memory is an in-process Store for tests and headless runs.
type Memory struct {
	mu   sync.Mutex
	vals map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{vals: make(map[string][]byte)}
}

func (m *Memory) Get(key string, v any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.vals[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("prefs: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("prefs: encode %q: %w", key, err)
	}
	m.SetRaw(key, raw)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.vals, key)
	m.mu.Unlock()
	return nil
}

// SetRaw stores bytes verbatim, valid JSON or not.
func (m *Memory) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.vals[key] = append([]byte(nil), raw...)
	m.mu.Unlock()
}

func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.vals[key]
	return raw, ok
}

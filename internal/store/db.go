// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store holds the keyed string stores a pipeline run reads and
// writes: user input, preprompts, cross-step memory, step logs and the
// generated workspace.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound   = errors.New("store: key not found")
	ErrReadOnly   = errors.New("store: read-only")
	ErrInvalidKey = errors.New("store: invalid key")
)

// DB is a string-to-string mapping.
type DB interface {
	// Get returns ErrNotFound (wrapped with the key) when key is absent.
	Get(key string) (string, error)
	Set(key, value string) error
	Has(key string) bool
	// Keys returns every key in lexical order.
	Keys() ([]string, error)
	// Clear removes every key.
	Clear() error
	// Path is the backing directory, empty when the DB is not on disk.
	Path() string
}

func notFound(key string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, key)
}

// DiskDB stores every key as a file under a directory. Keys may contain
// slashes; they never escape the directory.
type DiskDB struct {
	path string
}

var _ DB = (*DiskDB)(nil)

func NewDiskDB(path string) (*DiskDB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &DiskDB{path: abs}, nil
}

func (d *DiskDB) Path() string { return d.path }

func (d *DiskDB) file(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.path, clean), nil
}

func (d *DiskDB) Get(key string) (string, error) {
	f, err := d.file(key)
	if err != nil {
		return "", err
	}
	bs, err := os.ReadFile(f)
	if errors.Is(err, fs.ErrNotExist) {
		return "", notFound(key)
	}
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (d *DiskDB) Set(key, value string) error {
	f, err := d.file(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f, []byte(value), 0o644)
}

func (d *DiskDB) Has(key string) bool {
	f, err := d.file(key)
	if err != nil {
		return false
	}
	st, err := os.Stat(f)
	return err == nil && st.Mode().IsRegular()
}

func (d *DiskDB) Keys() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(d.path, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.path, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *DiskDB) Clear() error {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(d.path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// MemDB is an in-memory DB.
type MemDB struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ DB = (*MemDB)(nil)

// NewMemDB copies init into a new MemDB.
func NewMemDB(init map[string]string) *MemDB {
	m := make(map[string]string, len(init))
	for k, v := range init {
		m[k] = v
	}
	return &MemDB{m: m}
}

func (d *MemDB) Get(key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.m[key]
	if !ok {
		return "", notFound(key)
	}
	return v, nil
}

func (d *MemDB) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	d.mu.Lock()
	d.m[key] = value
	d.mu.Unlock()
	return nil
}

func (d *MemDB) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.m[key]
	return ok
}

func (d *MemDB) Keys() ([]string, error) {
	d.mu.RLock()
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	d.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (d *MemDB) Clear() error {
	d.mu.Lock()
	d.m = make(map[string]string)
	d.mu.Unlock()
	return nil
}

func (d *MemDB) Path() string { return "" }

type readOnly struct {
	DB
}

// ReadOnly wraps db so that Set and Clear fail with ErrReadOnly.
func ReadOnly(db DB) DB {
	if ro, ok := db.(readOnly); ok {
		return ro
	}
	return readOnly{DB: db}
}

func (r readOnly) Set(key, _ string) error {
	return fmt.Errorf("%w: set %q", ErrReadOnly, key)
}

func (r readOnly) Clear() error {
	return ErrReadOnly
}

// GetOr returns the value of key, or def when it is absent.
func GetOr(db DB, key, def string) (string, error) {
	v, err := db.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

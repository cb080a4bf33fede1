package draft

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// KV is the key/value store drafts are kept in.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	RemoveAllWithPrefix(prefix string) error
	Keys(prefix string) ([]string, error)
}

// MemoryKV keeps values in memory. It is safe for concurrent use.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string][]byte{}}
}

func (kv *MemoryKV) Get(key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (kv *MemoryKV) Set(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.m == nil {
		kv.m = map[string][]byte{}
	}
	kv.m[key] = append([]byte(nil), value...)
	return nil
}

func (kv *MemoryKV) Remove(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, key)
	return nil
}

func (kv *MemoryKV) RemoveAllWithPrefix(prefix string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for k := range kv.m {
		if strings.HasPrefix(k, prefix) {
			delete(kv.m, k)
		}
	}
	return nil
}

func (kv *MemoryKV) Keys(prefix string) ([]string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	var keys []string
	for k := range kv.m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DirKV stores one file per key under Dir. Keys are path-escaped so they
// may contain separators.
type DirKV struct {
	Dir string
}

const fileSuffix = ".json"

func (kv DirKV) path(key string) string {
	return filepath.Join(kv.Dir, url.PathEscape(key)+fileSuffix)
}

func (kv DirKV) Get(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(kv.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read draft %q: %w", key, err)
	}
	return b, true, nil
}

// Set writes value to a temporary file and renames it into place.
func (kv DirKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(kv.Dir, 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	f, err := os.CreateTemp(kv.Dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("write draft %q: %w", key, err)
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write draft %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write draft %q: %w", key, err)
	}
	if err := os.Rename(tmp, kv.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write draft %q: %w", key, err)
	}
	return nil
}

func (kv DirKV) Remove(key string) error {
	err := os.Remove(kv.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove draft %q: %w", key, err)
	}
	return nil
}

func (kv DirKV) RemoveAllWithPrefix(prefix string) error {
	keys, err := kv.Keys(prefix)
	if err != nil {
		return err
	}
	var errs []error
	for _, k := range keys {
		if err := kv.Remove(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Keys lists stored keys with the given prefix in sorted order. A missing
// directory holds no keys.
func (kv DirKV) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(kv.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		k, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

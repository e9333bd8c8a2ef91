package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tuumbleweed/xerr"
)

type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: map[string][]byte{}}
}

func (s *MemoryBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) *xerr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[cleanKey(key)] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryBlobStore) Download(ctx context.Context, key string) ([]byte, *xerr.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[cleanKey(key)]
	if !ok {
		return nil, xerr.NewError(fmt.Errorf("no blob under key"), "download blob", key)
	}
	return append([]byte(nil), data...), nil
}

// Keys lists stored keys in order.
func (s *MemoryBlobStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.blobs))
	for key := range s.blobs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MemoryRecordStore stores records as JSON so reads never alias what was written.
type MemoryRecordStore struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{tables: map[string]map[string][]byte{}}
}

func (s *MemoryRecordStore) Put(ctx context.Context, table string, key Key, item any) (e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return e
	}
	content, err := json.Marshal(item)
	if err != nil {
		return xerr.NewError(err, "marshal record", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[table] == nil {
		s.tables[table] = map[string][]byte{}
	}
	s.tables[table][recordID(key)] = content
	return nil
}

func (s *MemoryRecordStore) Get(ctx context.Context, table string, key Key, out any) (found bool, e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return false, e
	}

	s.mu.RLock()
	content, ok := s.tables[table][recordID(key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(content, out); err != nil {
		return false, xerr.NewError(err, "unmarshal record", table)
	}
	return true, nil
}

// Count returns the number of records in table.
func (s *MemoryRecordStore) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

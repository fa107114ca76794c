package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a thread-safe in-memory Store used by tests and local runs
// without Firestore credentials. When constructed with a snapshot path it
// persists its contents as indented JSON across restarts (write to a temp
// file, then rename).
type MemStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]interface{}
	snapshot string
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]map[string]interface{})}
}

// NewMemStoreWithSnapshot loads any existing snapshot from dataDir/filename
// and saves after every mutation.
func NewMemStoreWithSnapshot(dataDir, filename string) (*MemStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	s := &MemStore{
		docs:     make(map[string]map[string]interface{}),
		snapshot: filepath.Join(dataDir, filename),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemStore) Get(_ context.Context, p DocPath) (*Document, error) {
	if p.Invalid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[p.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: p.ID(), Data: copyDoc(data)}, nil
}

func (s *MemStore) Set(_ context.Context, p DocPath, data map[string]interface{}) error {
	if p.Invalid() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[p.String()] = copyDoc(data)
	return s.save()
}

func (s *MemStore) Update(_ context.Context, p DocPath, updates map[string]interface{}) error {
	if p.Invalid() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[p.String()]
	if !ok {
		return ErrNotFound
	}
	for k, v := range updates {
		doc[k] = v
	}
	return s.save()
}

func (s *MemStore) Delete(_ context.Context, p DocPath) error {
	if p.Invalid() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, p.String())
	return s.save()
}

func (s *MemStore) Add(_ context.Context, c CollectionPath, data map[string]interface{}) (string, error) {
	if c.Invalid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, c.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.docs[c.String()+"/"+id] = copyDoc(data)
	return id, s.save()
}

func (s *MemStore) Documents(_ context.Context, c CollectionPath) ([]Document, error) {
	if c.Invalid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, c.String())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := c.String() + "/"
	var docs []Document
	for path, data := range s.docs {
		if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
			continue
		}
		id := path[len(prefix):]
		// Only direct children; deeper paths belong to subcollections.
		if containsSlash(id) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: copyDoc(data)})
	}
	return docs, nil
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}

func copyDoc(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *MemStore) load() error {
	if s.snapshot == "" {
		return nil
	}
	file, err := os.Open(s.snapshot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s.docs); err != nil {
		return err
	}
	// JSON flattens timestamps into RFC 3339 strings; revive them so field
	// reads behave the same as with a live document database.
	for _, doc := range s.docs {
		for k, v := range doc {
			if str, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
					doc[k] = t
				}
			}
		}
	}
	return nil
}

// save must be called with the write lock held.
func (s *MemStore) save() error {
	if s.snapshot == "" {
		return nil
	}
	tempFile := s.snapshot + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.docs); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}
	return os.Rename(tempFile, s.snapshot)
}

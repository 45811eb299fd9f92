package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/danhigham/telefleet/internal/domain"
)

// document is the on-disk layout: {"last_id": n, "sessions": {...}}.
type document struct {
	LastID   int                       `json:"last_id,omitempty"`
	Sessions map[string]domain.Account `json:"sessions"`
}

// JSONStore keeps every account in one JSON file. Every call reads the
// file fresh; mutations rewrite it whole through a temp file and rename.
// Writers within this process are serialised.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sessions file: %w", err)
	}
	return s.write(&document{Sessions: map[string]domain.Account{}})
}

func (s *JSONStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read sessions file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sessions file: %w", err)
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]domain.Account{}
	}
	for key, acc := range doc.Sessions {
		acc.Key = key
		doc.Sessions[key] = acc
	}
	return &doc, nil
}

func (s *JSONStore) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}
	return nil
}

func (s *JSONStore) List(ctx context.Context) (map[string]domain.Account, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

func (s *JSONStore) Get(ctx context.Context, key string) (domain.Account, error) {
	doc, err := s.read()
	if err != nil {
		return domain.Account{}, err
	}
	acc, ok := doc.Sessions[key]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return acc, nil
}

func (s *JSONStore) Add(ctx context.Context, acc domain.NewAccount) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}

	n := nextID(doc)
	rec := newRecord(n, acc)
	doc.Sessions[rec.Key] = rec
	doc.LastID = n

	if err := s.write(doc); err != nil {
		return "", err
	}
	return rec.Key, nil
}

func (s *JSONStore) Update(ctx context.Context, key string, fn func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	acc, ok := doc.Sessions[key]
	if !ok {
		return domain.ErrAccountNotFound
	}
	fn(&acc)
	acc.Key = key
	doc.Sessions[key] = acc
	return s.write(doc)
}

func (s *JSONStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Sessions[key]; !ok {
		return false, nil
	}
	delete(doc.Sessions, key)

	// Keep the high-water mark so the deleted index is never handed out again.
	if n, ok := domain.ParseKey(key); ok && n > doc.LastID {
		doc.LastID = n
	}
	if err := s.write(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore) Close() error { return nil }

// nextID returns one past the highest index ever issued. Documents written
// without last_id fall back to the highest key still present.
func nextID(doc *document) int {
	high := doc.LastID
	for key := range doc.Sessions {
		if n, ok := domain.ParseKey(key); ok && n > high {
			high = n
		}
	}
	return high + 1
}

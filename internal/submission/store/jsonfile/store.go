// Package jsonfile persists form submissions in a single JSON document,
// appended by full read-modify-write under a mutex.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"curia/internal/submission/models"
	"curia/pkg/platform/sentinel"
)

type document struct {
	Requests []models.Message `json:"requests"`
}

// Store appends messages to a JSON file. Writes go through a temp file and
// an atomic rename.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open prepares the output file, seeding an empty document when missing.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(document{Requests: []models.Message{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Append(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Requests = append(doc.Requests, msg)
	return s.write(doc)
}

func (s *Store) List(_ context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Requests, nil
}

func (s *Store) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, fmt.Errorf("read %s: %w", s.path, sentinel.ErrUnavailable)
		}
		return doc, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.path, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish %s: %w", s.path, err)
	}
	return nil
}

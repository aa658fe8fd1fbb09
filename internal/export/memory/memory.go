// Package memory is an in-memory RowWriter for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"spendsync/internal/export"
)

type Store struct {
	mu   sync.Mutex
	tabs map[string][][]any
}

var _ export.RowWriter = (*Store)(nil)

func New() *Store {
	return &Store{tabs: make(map[string][][]any)}
}

func (s *Store) WriteRows(_ context.Context, tab string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]any, len(rows))
	for i, row := range rows {
		copied[i] = append([]any(nil), row...)
	}
	s.tabs[tab] = copied
	return nil
}

// Rows returns the last write for tab, or nil.
func (s *Store) Rows(tab string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[tab]
}

// Package memstore provides an in-memory beefy.Storage implementation:
// a reference for embedders and the fixture store this module's own
// tests run against. Grounded on the convention the teacher's
// 11-beefy/types/update_test.go establishes of keeping fixture/storage
// helpers in their own small package rather than the main types package.
package memstore

import (
	"sync"

	"github.com/cosmos/ibc-go-beefy"
)

// Store is a mutex-guarded in-memory beefy.Storage. Commit writes both
// the mmr state and the authority set under a single lock acquisition,
// so a concurrent reader never observes a height bump without its
// accompanying authority rotation, or vice versa.
type Store struct {
	mu          sync.Mutex
	initialised bool
	mmrState    beefy.MmrState
	authority   beefy.AuthoritySet
}

// New returns an empty, uninitialised Store.
func New() *Store {
	return &Store{}
}

// MmrState implements beefy.StorageReader.
func (s *Store) MmrState() (beefy.MmrState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialised {
		return beefy.MmrState{}, beefy.ErrNotInitialised
	}
	return s.mmrState, nil
}

// AuthoritySet implements beefy.StorageReader.
func (s *Store) AuthoritySet() (beefy.AuthoritySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialised {
		return beefy.AuthoritySet{}, beefy.ErrNotInitialised
	}
	return s.authority, nil
}

// Commit implements beefy.StorageWriter: both fields are written while
// holding a single lock, so MmrState/AuthoritySet never observe a
// partial update.
func (s *Store) Commit(state beefy.MmrState, set beefy.AuthoritySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mmrState = state
	s.authority = set
	s.initialised = true
	return nil
}

var _ beefy.Storage = (*Store)(nil)

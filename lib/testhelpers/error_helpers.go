package testhelpers

import (
	"context"
	"errors"
	"sync"

	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
)

// ErrInjected is returned by test doubles configured to fail.
var ErrInjected = errors.New("injected failure")

// FailingStore wraps a checkpoint.Store and fails the configured operations.
type FailingStore struct {
	checkpoint.Store

	mu         sync.Mutex
	FailSave   bool
	FailDelete bool
	saves      int
	deletes    int
}

// NewFailingStore wraps an in-memory store.
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: checkpoint.NewMemoryStore()}
}

// Save records the call and fails when FailSave is set.
func (f *FailingStore) Save(sess *checkpoint.Session) error {
	f.mu.Lock()
	f.saves++
	fail := f.FailSave
	f.mu.Unlock()

	if fail {
		return ErrInjected
	}
	return f.Store.Save(sess)
}

// Delete records the call and fails when FailDelete is set.
func (f *FailingStore) Delete(target string) error {
	f.mu.Lock()
	f.deletes++
	fail := f.FailDelete
	f.mu.Unlock()

	if fail {
		return ErrInjected
	}
	return f.Store.Delete(target)
}

// Saves returns the number of Save calls.
func (f *FailingStore) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// Deletes returns the number of Delete calls.
func (f *FailingStore) Deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// FailingLocator never finds any target.
type FailingLocator struct {
	Err error
}

// Locate returns the configured error.
func (l FailingLocator) Locate(context.Context, string) error {
	return l.Err
}

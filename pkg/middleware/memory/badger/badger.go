// Package badger provides a persistent memory.Store backed by BadgerDB.
//
// Conversation history survives process restarts, so a chat session can
// resume where it left off.
package badger

import (
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/memory"
)

// Store implements the memory.Store interface on a BadgerDB database.
//
// Safe for concurrent use; Badger handles its own locking.
type Store struct {
	db *badgerdb.DB
}

// New opens (or creates) a Badger database at the given path.
//
// Example:
//
//	store, err := badger.New("/var/lib/app/history")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//	mem := memory.NewConversationWithStore(store)
func New(path string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty for a library

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ memory.Store = (*Store)(nil)

// Get retrieves data for a key, returning nil when the key is absent.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Set stores data for a key.
func (s *Store) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes data for a key.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(key string) bool {
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	return err == nil
}

// List returns all stored keys.
func (s *Store) List() []string {
	var keys []string
	_ = s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys
}

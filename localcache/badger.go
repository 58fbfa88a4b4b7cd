package localcache

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"
)

// BadgerStore persists cache entries in a badger database on disk.
type BadgerStore struct {
	Database *badger.DB
}

// Exists reports whether a badger database has been created at path.
func Exists(path string) bool {
	if _, err := os.Stat(filepath.Join(path, "MANIFEST")); os.IsNotExist(err) {
		return false
	}
	return true
}

// OpenBadger opens (or creates) the database at path. Badger's own log
// output goes through logger.
func OpenBadger(path string, logger logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if logger != nil {
		opts = opts.WithLogger(logger.WithField("component", "badger"))
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{Database: db}, nil
}

// Get function
func (s *BadgerStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.Database.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set function
func (s *BadgerStore) Set(key string, value []byte) error {
	return s.Database.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Update reads and writes key in one badger transaction.
func (s *BadgerStore) Update(key string, fn UpdateFunc) error {
	return s.Database.Update(func(txn *badger.Txn) error {
		var old []byte
		found := true
		item, err := txn.Get([]byte(key))
		switch {
		case err == badger.ErrKeyNotFound:
			found = false
		case err != nil:
			return err
		default:
			if old, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}
		next, err := fn(old, found)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), next)
	})
}

// Delete function
func (s *BadgerStore) Delete(key string) error {
	return s.Database.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close function
func (s *BadgerStore) Close() error {
	return s.Database.Close()
}

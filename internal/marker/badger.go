package marker

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "lastreset/"

// BadgerStore is the on-device marker store, one badger database under
// the app's data directory.
type BadgerStore struct {
	db *badger.DB
}

func Open(dir string) (*BadgerStore, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open marker store at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) LastReset(tenantId string) (string, error) {
	var isoDate string
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + tenantId))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			isoDate = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	return isoDate, err
}

func (bs *BadgerStore) SetLastReset(tenantId string, isoDate string) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+tenantId), []byte(isoDate))
	})
}

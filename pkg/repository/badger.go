package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// BadgerRepository is a Badger-backed Repository: one key per file_id,
// value is the JSON encoding of FileInfo. Badger's own WAL and LSM
// compaction give us crash-safe persistence without a SQL layer.
type BadgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository opens (creating if necessary) a Badger database
// rooted at dir.
func NewBadgerRepository(dir string) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("repository: opening badger db at %s: %w", dir, err)
	}
	return &BadgerRepository{db: db}, nil
}

func fileIDKey(fileID int64) []byte {
	return []byte(strconv.FormatInt(fileID, 10))
}

func (r *BadgerRepository) Get(_ context.Context, fileID int64) (FileInfo, error) {
	var info FileInfo
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileIDKey(fileID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FileInfo{}, ErrNotFound
		}
		return FileInfo{}, fmt.Errorf("repository: get %d: %w", fileID, err)
	}
	return info, nil
}

func (r *BadgerRepository) Put(_ context.Context, info FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("repository: marshal %d: %w", info.FileID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fileIDKey(info.FileID), data)
	})
	if err != nil {
		return fmt.Errorf("repository: put %d: %w", info.FileID, err)
	}
	return nil
}

func (r *BadgerRepository) Delete(_ context.Context, fileID int64) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(fileIDKey(fileID))
	})
	if err != nil {
		return fmt.Errorf("repository: delete %d: %w", fileID, err)
	}
	return nil
}

func (r *BadgerRepository) List(_ context.Context) ([]FileInfo, error) {
	var infos []FileInfo
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var info FileInfo
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			}); err != nil {
				return err
			}
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: list: %w", err)
	}
	return infos, nil
}

func (r *BadgerRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("repository: close: %w", err)
	}
	return nil
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
)

// DocumentStore implements storage.DocumentStore for BadgerDB.
type DocumentStore struct {
	backend *Backend
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Close releases store resources. The underlying backend is shared and is
// closed separately.
func (s *DocumentStore) Close() error {
	return nil
}

// Lookup retrieves the record for a document ID.
func (s *DocumentStore) Lookup(ctx context.Context, docID string) (*core.DocumentRecord, error) {
	var result *core.DocumentRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocRecordKey(docID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalDocumentRecord(val)
			return err
		})
	}, false)
	return result, mapErr(err)
}

// Upsert creates or replaces records.
func (s *DocumentStore) Upsert(ctx context.Context, records ...*core.DocumentRecord) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeDocRecordKey(record.DocID)
			value := storage.MarshalDocumentRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return mapErr(err)
}

// Delete removes records by document ID.
func (s *DocumentStore) Delete(ctx context.Context, docIDs ...string) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, docID := range docIDs {
			key := makeDocRecordKey(docID)
			if _, err := tx.Get(key); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return mapErr(err)
}

// AllDocIDs returns the IDs of every stored record.
func (s *DocumentStore) AllDocIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, docRecordPrefix+":"))
		}
		return nil
	}, false)
	return ids, mapErr(err)
}

// AllRecords returns every stored record.
func (s *DocumentStore) AllRecords(ctx context.Context) ([]*core.DocumentRecord, error) {
	var records []*core.DocumentRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalDocumentRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return records, mapErr(err)
}

// mapErr translates BadgerDB errors to storage sentinel errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return storage.ErrNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, storage.ErrStorageClosed)
	default:
		return err
	}
}

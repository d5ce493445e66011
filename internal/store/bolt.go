package store

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// Bolt is a Store backed by a single-bucket bbolt database.
//
// Useful where the CGO sqlite driver is unavailable; behavior matches the
// SQLite backend key for key.
type Bolt struct {
	db *bbolt.DB
}

var _ Store = (*Bolt)(nil)

var boltBucket = []byte("session")

// OpenBolt opens (creating if necessary) a bbolt-backed store at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(key string) (string, bool, error) {
	var value string
	var found bool

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(boltBucket).Get([]byte(key))
		if data != nil {
			value = string(data)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, found, nil
}

func (b *Bolt) Set(key, value string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (b *Bolt) RemoveAll(keys ...string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for _, key := range keys {
			if err := bucket.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MegaGrindStone/skyqa"
	bolt "go.etcd.io/bbolt"
)

var objectsBucket = []byte("objects")

// Bolt provides a BoltDB key-value implementation of the catalog.
// Objects are stored as JSON under their lower-cased name, so lookups return complete records.
type Bolt struct {
	DB *bolt.DB
}

// NewBolt opens the BoltDB file at path and ensures the objects bucket exists.
func NewBolt(path string) (Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Bolt{}, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(objectsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return Bolt{}, fmt.Errorf("failed to create objects bucket: %w", err)
	}

	return Bolt{DB: db}, nil
}

// Lookup retrieves the object stored under name, ignoring case.
func (b Bolt) Lookup(_ context.Context, name string) (skyqa.SkyObject, error) {
	var data []byte
	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}
		if v := bucket.Get(objectKey(name)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "bolt lookup", Err: err}
	}
	if data == nil {
		return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
	}

	var obj skyqa.SkyObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{
			Op:  "bolt lookup",
			Err: fmt.Errorf("failed to decode %q: %w", name, err),
		}
	}
	return obj, nil
}

// ListNames returns the stored names in ascending order.
func (b Bolt) ListNames(context.Context) ([]string, error) {
	names := make([]string, 0)
	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var obj skyqa.SkyObject
			if err := json.Unmarshal(v, &obj); err != nil {
				return fmt.Errorf("failed to decode %q: %w", k, err)
			}
			names = append(names, obj.Name)
			return nil
		})
	})
	if err != nil {
		return nil, &skyqa.StorageError{Op: "bolt list names", Err: err}
	}

	// Keys are lower-cased, so their order is not the order of the names.
	sortNames(names)
	return names, nil
}

// Upsert stores obj, replacing any object of the same name.
func (b Bolt) Upsert(_ context.Context, obj skyqa.SkyObject) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", obj.Name, err)
	}

	err = b.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}
		return bucket.Put(objectKey(obj.Name), data)
	})
	if err != nil {
		return &skyqa.StorageError{Op: "bolt upsert", Err: err}
	}
	return nil
}

// Close releases the database file.
func (b Bolt) Close() error {
	return b.DB.Close()
}

func objectKey(name string) []byte {
	return []byte(strings.ToLower(name))
}

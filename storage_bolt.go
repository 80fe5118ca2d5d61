package indexedredis

import (
	"bytes"
	"unsafe"

	"go.etcd.io/bbolt"
)

// Bolt layout: one root bucket per model, holding a "d" sub-bucket with the
// record field maps (8-byte big-endian id => msgpack blob) and one "i.<field>"
// sub-bucket per indexed field (see indexEntryKey). The "d" bucket's bbolt
// sequence issues record ids.
const boltDataBucket = "d"

func boltIndexBucket(field string) string {
	return "i." + field
}

type boltStore struct {
	bdb *bbolt.DB
}

// NewBoltStore returns a Store backed by an open Bolt database.
func NewBoltStore(bdb *bbolt.DB) Store {
	return &boltStore{bdb: bdb}
}

func (s *boltStore) Begin(writable bool) (StoreTx, error) {
	btx, err := s.bdb.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &boltTx{btx: btx}, nil
}

func (s *boltStore) Close() error {
	return s.bdb.Close()
}

type boltTx struct {
	btx *bbolt.Tx
}

func (tx *boltTx) BoltTx() *bbolt.Tx { return tx.btx }

func (tx *boltTx) Writable() bool { return tx.btx.Writable() }

// bucket returns a model's sub-bucket, nil when it doesn't exist.
func (tx *boltTx) bucket(model, sub string) *bbolt.Bucket {
	root := tx.btx.Bucket(unsafeBytesFromString(model))
	if root == nil {
		return nil
	}
	return root.Bucket(unsafeBytesFromString(sub))
}

func (tx *boltTx) createBucket(model, sub string) (*bbolt.Bucket, error) {
	root, err := tx.btx.CreateBucketIfNotExists(unsafeBytesFromString(model))
	if err != nil {
		return nil, err
	}
	return root.CreateBucketIfNotExists(unsafeBytesFromString(sub))
}

func (tx *boltTx) GetFields(model string, id ID) (map[string][]byte, error) {
	data := tx.bucket(model, boltDataBucket)
	if data == nil {
		return nil, nil
	}
	raw := data.Get(idKey(id))
	if raw == nil {
		return nil, nil
	}
	return decodeFieldMap(raw)
}

func (tx *boltTx) SetFields(model string, id ID, fields map[string][]byte) error {
	data, err := tx.createBucket(model, boltDataBucket)
	if err != nil {
		return err
	}
	key := idKey(id)
	merged := fields
	if raw := data.Get(key); raw != nil {
		merged, err = decodeFieldMap(raw)
		if err != nil {
			return err
		}
		for name, val := range fields {
			merged[name] = val
		}
	}
	blob, err := encodeFieldMap(merged)
	if err != nil {
		return err
	}
	return data.Put(key, blob)
}

func (tx *boltTx) DeleteRecord(model string, id ID) error {
	data := tx.bucket(model, boltDataBucket)
	if data == nil {
		return nil
	}
	return data.Delete(idKey(id))
}

func (tx *boltTx) NextID(model string) (ID, error) {
	data, err := tx.createBucket(model, boltDataBucket)
	if err != nil {
		return 0, err
	}
	seq, err := data.NextSequence()
	if err != nil {
		return 0, err
	}
	return ID(seq), nil
}

func (tx *boltTx) IndexAdd(model, field, value string, id ID) error {
	idx, err := tx.createBucket(model, boltIndexBucket(field))
	if err != nil {
		return err
	}
	return idx.Put(indexEntryKey(value, id), nil)
}

func (tx *boltTx) IndexDel(model, field, value string, id ID) error {
	idx := tx.bucket(model, boltIndexBucket(field))
	if idx == nil {
		return nil
	}
	return idx.Delete(indexEntryKey(value, id))
}

func (tx *boltTx) IndexLookup(model, field, value string) ([]ID, error) {
	idx := tx.bucket(model, boltIndexBucket(field))
	if idx == nil {
		return nil, nil
	}
	prefix := indexEntryPrefix(value)
	var out []ID
	c := idx.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		// Skip entries whose value merely starts with the wanted bytes.
		if len(k) != len(prefix)+8 {
			continue
		}
		out = append(out, keyID(k[len(k)-8:]))
	}
	return out, nil
}

func (tx *boltTx) IndexWalk(model, field string, fn func(value string, id ID) error) error {
	idx := tx.bucket(model, boltIndexBucket(field))
	if idx == nil {
		return nil
	}
	c := idx.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if len(k) < 9 {
			continue
		}
		if err := fn(string(k[:len(k)-9]), keyID(k[len(k)-8:])); err != nil {
			return err
		}
	}
	return nil
}

func (tx *boltTx) ListIDs(model string) ([]ID, error) {
	data := tx.bucket(model, boltDataBucket)
	if data == nil {
		return nil, nil
	}
	var out []ID
	c := data.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		out = append(out, keyID(k))
	}
	return out, nil
}

func (tx *boltTx) DropIndex(model, field string) error {
	root := tx.btx.Bucket(unsafeBytesFromString(model))
	if root == nil {
		return nil
	}
	err := root.DeleteBucket(unsafeBytesFromString(boltIndexBucket(field)))
	if err == bbolt.ErrBucketNotFound {
		return nil
	}
	return err
}

func (tx *boltTx) DropModel(model string) error {
	err := tx.btx.DeleteBucket(unsafeBytesFromString(model))
	if err == bbolt.ErrBucketNotFound {
		return nil
	}
	return err
}

func (tx *boltTx) Commit() error { return tx.btx.Commit() }

func (tx *boltTx) Rollback() error {
	err := tx.btx.Rollback()
	if err == bbolt.ErrTxClosed {
		return nil
	}
	return err
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

package recordkv

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"go.etcd.io/bbolt"
)

var dataBucket = []byte("data")

// boltStorage keeps the Bolt file handle open for the lifetime of the DB:
// Bolt takes an exclusive file lock, so reopening the file per operation
// would serialize every caller on flock. Sessions borrow the handle and
// run each interaction in its own Bolt transaction.
type boltStorage struct {
	bdb *bbolt.DB
}

func openBoltStorage(path string, isTesting bool) (storage, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if isTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("recordkv: %w", err)
	}
	err = bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(dataBucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("recordkv: %w", err)
	}
	return &boltStorage{bdb: bdb}, nil
}

func (s *boltStorage) open() (session, error) {
	return &boltSession{bdb: s.bdb}, nil
}

func (s *boltStorage) close() error {
	return s.bdb.Close()
}

type boltSession struct {
	bdb *bbolt.DB
}

func (s *boltSession) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		// Bolt-owned memory is invalid after the transaction ends.
		if v := btx.Bucket(dataBucket).Get(key); v != nil {
			out = slices.Clone(v)
		}
		return nil
	})
	return out, err
}

func (s *boltSession) scan(prefix []byte, f func(k, v []byte) bool) error {
	return s.bdb.View(func(btx *bbolt.Tx) error {
		c := btx.Bucket(dataBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !f(k, v) {
				break
			}
		}
		return nil
	})
}

func (s *boltSession) apply(b *batch) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(dataBucket)
		for _, p := range b.sets {
			if err := buck.Put(p.k, p.v); err != nil {
				return err
			}
		}
		for _, k := range b.dels {
			if err := buck.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *boltSession) close() error {
	return nil
}

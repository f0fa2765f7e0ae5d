package pixst

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

const (
	blobPrefix    = "b/"
	blobRefPrefix = "r/"
)

func blobKey(digest string) []byte {
	return []byte(blobPrefix + digest)
}

func blobRefKey(digest string) []byte {
	return []byte(blobRefPrefix + digest)
}

// PutBlob stores a binary payload content-addressed by its sha256
// digest. Storing the same bytes twice writes them once. The blob
// starts without referents; creating an object carrying the digest
// adds one.
func (s *Store) PutBlob(r io.Reader) (string, int64, error) {
	var buf bytes.Buffer
	h := sha256.New()
	n, err := buf.ReadFrom(io.TeeReader(r, h))
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "", 0, ErrEmptyPayload
	}
	digest := hex.EncodeToString(h.Sum(nil))
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(blobKey(digest))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(blobKey(digest), buf.Bytes()); err != nil {
			return err
		}
		return s.setBlobRefCount(txn, digest, 0)
	})
	return digest, n, err
}

// GetBlob returns the payload bytes of the digest.
func (s *Store) GetBlob(digest string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(digest))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, digest)
	}
	return data, err
}

func (s *Store) HasBlob(digest string) bool {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(blobKey(digest))
		return err
	})
	return err == nil
}

// BlobRefCount returns the number of objects referencing the blob.
func (s *Store) BlobRefCount(digest string) (uint64, error) {
	var count uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = s.blobRefCount(txn, digest)
		return err
	})
	return count, err
}

func (s *Store) blobRefCount(txn *badger.Txn, digest string) (uint64, error) {
	item, err := txn.Get(blobRefKey(digest))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrBlobNotFound, digest)
	}
	if err != nil {
		return 0, err
	}
	var count uint64
	err = item.Value(func(val []byte) error {
		count = binary.BigEndian.Uint64(val)
		return nil
	})
	return count, err
}

func (s *Store) setBlobRefCount(txn *badger.Txn, digest string, count uint64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, count)
	return txn.Set(blobRefKey(digest), val)
}

func (s *Store) addBlobRef(txn *badger.Txn, digest string) error {
	count, err := s.blobRefCount(txn, digest)
	if err != nil {
		return err
	}
	return s.setBlobRefCount(txn, digest, count+1)
}

// releaseBlobRef decrements the reference count and deletes the blob
// once nothing references it anymore.
func (s *Store) releaseBlobRef(txn *badger.Txn, digest string) error {
	count, err := s.blobRefCount(txn, digest)
	if err != nil {
		return err
	}
	if count > 1 {
		return s.setBlobRefCount(txn, digest, count-1)
	}
	if err := txn.Delete(blobRefKey(digest)); err != nil {
		return err
	}
	return txn.Delete(blobKey(digest))
}

package pixst

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/exp/slog"
)

const (
	objPrefix   = "o/"
	linkPrefix  = "x/"
	childPrefix = "k/"
	seqPrefix   = "seq/"

	seqBandwidth = 16
)

// Store persists domain objects, the link graph between them and
// their content-addressed binary payloads in a single badger DB,
// separated by key prefixes.
type Store struct {
	db *badger.DB

	mu   sync.Mutex
	seqs map[Class]*badger.Sequence

	stopGC chan struct{}

	// BasePath is the directory the store lives in.
	BasePath string
}

// NewStore opens the object store with the provided options. If no
// data dir is set a unique one below the base path is chosen.
func NewStore(opts StoreOptions) (*Store, error) {
	opts.ensureDataDir()
	db, err := badger.Open(opts.toBadgerOpts())
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:       db,
		seqs:     make(map[Class]*badger.Sequence),
		stopGC:   make(chan struct{}),
		BasePath: opts.Dir,
	}
	go s.gc()
	return s, nil
}

func objKey(r Ref) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", objPrefix, r.Class, r.ID))
}

func linkIdxKey(from Ref, linkClass Class, linkID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%020d", linkPrefix, from, linkClass, linkID))
}

func childIdxKey(parent Ref, class Class, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%020d", childPrefix, parent, class, id))
}

// Create assigns a fresh id to the object and persists it together
// with its graph indexes. Referenced blobs have to exist already;
// their reference counts are incremented. The object is immutable
// afterwards.
func (s *Store) Create(obj *Object) error {
	if !obj.isMutable {
		return ErrObjectIsImmutable
	}
	if err := obj.isValid(); err != nil {
		return err
	}
	id, err := s.nextID(obj.class)
	if err != nil {
		return err
	}
	obj.id = id
	data, err := obj.Marshal()
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		key := objKey(obj.Ref())
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if obj.class.IsLink() {
			if err := txn.Set(linkIdxKey(obj.from, obj.class, obj.id), key); err != nil {
				return err
			}
		}
		if !obj.parent.IsZero() {
			if err := txn.Set(childIdxKey(obj.parent, obj.class, obj.id), key); err != nil {
				return err
			}
		}
		for _, digest := range obj.BlobRefs() {
			if err := s.addBlobRef(txn, digest); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		obj.id = 0
		return err
	}
	obj.markAsImmutable()
	return nil
}

// BatchCreate inserts multiple objects in discovery order. Unlike a
// badger write batch it keeps the blob reference counts consistent,
// which needs reads.
func (s *Store) BatchCreate(objs []*Object) error {
	for _, obj := range objs {
		if err := s.Create(obj); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the object addressed by the ref.
func (s *Store) Get(ref Ref) (*Object, error) {
	var obj Object
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objKey(ref))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return obj.Unmarshal(val)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return &obj, err
}

// Delete removes the object, its graph indexes and releases its
// blobs. Blobs without any remaining referent are deleted.
func (s *Store) Delete(ref Ref) error {
	obj, err := s.Get(ref)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(objKey(ref)); err != nil {
			return err
		}
		if obj.class.IsLink() {
			if err := txn.Delete(linkIdxKey(obj.from, obj.class, obj.id)); err != nil {
				return err
			}
		}
		if !obj.parent.IsZero() {
			if err := txn.Delete(childIdxKey(obj.parent, obj.class, obj.id)); err != nil {
				return err
			}
		}
		for _, digest := range obj.BlobRefs() {
			if err := s.releaseBlobRef(txn, digest); err != nil {
				return err
			}
		}
		return nil
	})
}

// LinksFrom returns all links whose from side is the given ref,
// optionally restricted to one link class.
func (s *Store) LinksFrom(ref Ref, linkClass Class) ([]*Object, error) {
	prefix := fmt.Sprintf("%s%s/", linkPrefix, ref)
	if linkClass != "" {
		prefix = fmt.Sprintf("%s%s/%s/", linkPrefix, ref, linkClass)
	}
	return s.collectIndexed([]byte(prefix))
}

// ChildrenOf returns the direct children of the ref, e.g. the Rois
// of an Image.
func (s *Store) ChildrenOf(ref Ref) ([]*Object, error) {
	prefix := fmt.Sprintf("%s%s/", childPrefix, ref)
	return s.collectIndexed([]byte(prefix))
}

// collectIndexed follows an index prefix whose values are object
// keys and returns the objects.
func (s *Store) collectIndexed(prefix []byte) ([]*Object, error) {
	const prefetchSize = 10
	objs := make([]*Object, 0, prefetchSize)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = prefetchSize
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var key []byte
			if err := it.Item().Value(func(val []byte) error {
				key = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}
			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			obj := &Object{}
			if err := item.Value(func(val []byte) error {
				return obj.Unmarshal(val)
			}); err != nil {
				return err
			}
			objs = append(objs, obj)
		}
		return nil
	})
	return objs, err
}

// RunQuery returns every object of the owner matching the query.
func (s *Store) RunQuery(q *Query) ([]*Object, error) {
	if !q.isValid() {
		return nil, ErrInvalidQuery
	}
	prefix := []byte(objPrefix)
	if q.class != "" {
		prefix = []byte(fmt.Sprintf("%s%s/", objPrefix, q.class))
	}
	const prefetchSize = 10
	objs := make([]*Object, 0, prefetchSize)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = prefetchSize
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				obj := &Object{}
				if err := obj.Unmarshal(val); err != nil {
					return err
				}
				if obj.Owner() != q.owner {
					return nil
				}
				if q.meta != nil && !q.meta.matches(obj, q.act) {
					return nil
				}
				objs = append(objs, obj)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return objs, err
}

// nextID returns the next id of the per-class sequence, starting
// at 1.
func (s *Store) nextID(class Class) (uint64, error) {
	s.mu.Lock()
	seq, ok := s.seqs[class]
	if !ok {
		var err error
		seq, err = s.db.GetSequence([]byte(seqPrefix+class.String()), seqBandwidth)
		if err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.seqs[class] = seq
	}
	s.mu.Unlock()
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (s *Store) Shutdown() error {
	close(s.stopGC)
	s.mu.Lock()
	for _, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()
	return s.db.Close()
}

// gc garbage collects the value log of the key value store every 10
// minutes.
func (s *Store) gc() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				slog.Error("value log gc failed", slog.String("msg", err.Error()))
			}
		}
	}
}

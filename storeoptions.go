package pixst

import (
	"context"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/naivary/pixst/logger"
)

const basePath = "/var/lib/pixst"

type StoreOptions badger.Options

// NewDefaultStoreOptions returns options with an empty data dir. The
// store will pick a unique directory below the base path unless a
// dir is set explicitly.
func NewDefaultStoreOptions() StoreOptions {
	opts := badger.DefaultOptions("")
	opts.Logger = logger.New(context.Background())
	return StoreOptions(opts)
}

// WithDataDir places the store below the given directory.
func (s StoreOptions) WithDataDir(dir string) StoreOptions {
	s.Dir = dir
	s.ValueDir = dir
	return s
}

func (s *StoreOptions) ensureDataDir() {
	if s.Dir != "" {
		return
	}
	dir := filepath.Join(basePath, uuid.NewString())
	s.Dir = dir
	s.ValueDir = dir
}

func (s StoreOptions) toBadgerOpts() badger.Options {
	return badger.Options(s)
}

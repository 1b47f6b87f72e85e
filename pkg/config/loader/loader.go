package loader

import (
	"context"

	"github.com/ninja0404/dex-reputation/pkg/config/reader"
	"github.com/ninja0404/dex-reputation/pkg/config/source"
)

// Loader manages loading sources
type Loader interface {
	// Close stops the loader
	Close() error
	// Load the sources
	Load(...source.Source) error
	// Snapshot of the merged config
	Snapshot() (*Snapshot, error)
	// Sync force a source changeset sync
	Sync() error
	// Watch for changes
	Watch(...string) (Watcher, error)
	// String name of loader
	String() string
}

// Watcher lets you watch sources and returns a merged ChangeSet
type Watcher interface {
	// Next returns the next snapshot
	Next() (*Snapshot, error)
	// Stop watching for changes
	Stop() error
}

// Snapshot is a merged ChangeSet with a version
type Snapshot struct {
	// The merged ChangeSet
	ChangeSet *source.ChangeSet
	// Deterministic and comparable version of the snapshot
	Version string
}

// Copy returns a deep copy of the snapshot
func Copy(s *Snapshot) *Snapshot {
	cs := *(s.ChangeSet)

	return &Snapshot{
		ChangeSet: &cs,
		Version:   s.Version,
	}
}

type Options struct {
	Reader reader.Reader
	Source []source.Source

	// for alternative data
	Context context.Context
}

type Option func(o *Options)

package beefy

import "errors"

// ErrNotInitialised is returned by StorageReader.MmrState when no MmrState
// has ever been written — the signal Client.Initialise uses to tell a
// first initialisation from a second one (spec's AlreadyInitialised).
// Client.IngestMMRUpdate called before Initialise wraps it as
// ErrStorageRead, like any other storage read failure.
var ErrNotInitialised = errors.New("beefy: client not initialised")

// StorageReader is the read half of the host-provided storage capability.
// Spec-equivalent to the Rust crate's StorageRead trait
// (original_source/src/traits.rs).
type StorageReader interface {
	// MmrState returns the current MmrState, or ErrNotInitialised if
	// Initialise has never been called successfully.
	MmrState() (MmrState, error)

	// AuthoritySet returns the current/next authority-set pair.
	AuthoritySet() (AuthoritySet, error)
}

// StorageWriter is the write half of the host-provided storage
// capability. Spec-equivalent to the Rust crate's StorageWrite trait.
//
// Commit MUST make the (MmrState, AuthoritySet) pair it writes atomic
// with respect to concurrent readers (spec §4.2): a reader calling
// MmrState/AuthoritySet mid-Commit must observe either the values from
// before this call or the values from after it, never one new and one
// stale. This is why Commit takes both values in a single call rather
// than exposing them as two separate setters — there is no call
// boundary a concurrent reader could land in between.
type StorageWriter interface {
	Commit(MmrState, AuthoritySet) error
}

// Storage is the full read/write capability Client is constructed with.
type Storage interface {
	StorageReader
	StorageWriter
}
